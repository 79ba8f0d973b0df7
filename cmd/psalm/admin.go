package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin unlock latch",
}

var adminUnlockCmd = &cobra.Command{
	Use:   "unlock <passphrase>",
	Short: "Unlock admin settings",
	Long: `Unlock admin settings by passphrase. The expected SHA-256 digest (hex)
is read from the PSALM_ADMIN_DIGEST environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		digest := os.Getenv("PSALM_ADMIN_DIGEST")
		if digest == "" {
			return errors.New("PSALM_ADMIN_DIGEST is not set")
		}

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		ok, err := a.settings.Unlock(ctx, args[0], digest)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("incorrect passphrase")
		}
		fmt.Println("unlocked")
		return nil
	},
}

var adminLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock admin settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return a.settings.Lock(ctx)
	},
}

var adminStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latch state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if a.settings.AdminUnlocked(ctx) {
			fmt.Println("unlocked")
		} else {
			fmt.Println("locked")
		}
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminUnlockCmd, adminLockCmd, adminStatusCmd)
	rootCmd.AddCommand(adminCmd)
}
