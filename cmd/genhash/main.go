// Command genhash prints an ADMIN_ACCOUNTS entry for an HR operator:
// a bcrypt hash of the password and, with -totp, a fresh TOTP secret.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"go-hr-tracker/pkg/auth"

	"github.com/pquerna/otp/totp"
)

func main() {
	username := flag.String("user", "", "operator username")
	withTOTP := flag.Bool("totp", false, "also generate a TOTP secret")
	issuer := flag.String("issuer", "HR Tracker", "TOTP issuer shown in authenticator apps")
	flag.Parse()

	if *username == "" || strings.ContainsAny(*username, ":,") {
		fmt.Fprintln(os.Stderr, "usage: genhash -user <name> [-totp] < password")
		os.Exit(2)
	}

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		fmt.Fprintln(os.Stderr, "Error: password expected on stdin")
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	entry := *username + ":" + hash
	if *withTOTP {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: *issuer, AccountName: *username})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		entry += ":" + key.Secret()
		fmt.Fprintf(os.Stderr, "Provisioning URI: %s\n", key.URL())
	}
	fmt.Println(entry)
}
