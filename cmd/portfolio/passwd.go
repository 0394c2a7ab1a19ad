package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/application/orchestrators"
	"portfolio/internal/domain/account"
	"portfolio/internal/domain/record"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd <email>",
	Short: "Create an admin account or reset its password",
	Long:  `Reads the new password from stdin. Resetting also clears any login lockout.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPasswd,
}

func runPasswd(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.ErrOrStderr(), "New password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("no password given on stdin")
	}
	password := strings.TrimRight(line, "\r\n")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, closeStore, err := openStore(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	created, err := orchestrators.ExecuteSetPassword(cmd.Context(), orchestrators.AccountDeps{
		Accounts: storage.NewRepository[account.Account](backend.Store, record.Accounts),
		Now:      time.Now,
	}, args[0], password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created account %s\n", account.NormalizeEmail(args[0]))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", account.NormalizeEmail(args[0]))
	}
	return nil
}
