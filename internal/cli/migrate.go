package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use: "migrate",
	Short: "Apply persistence schema migrations and exit",
	RunE: runMigrate,
}

// runMigrate just opens the store: sqlite.NewDB applies every registered
// migration as part of opening the connection, so there is nothing else
// to do here beyond reporting success.
func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.db.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", cfg.Persistence.SQLitePath)
	return nil
}
