package cli

import (
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"

	"marker-migrate/internal/recordio"
	"marker-migrate/internal/store"
)

var setsDB string

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Manage the local library of stored record sets",
	Long: `Keeps named record sets in a local sqlite database so frequently used
annotation sets don't have to live as loose JSON files.`,
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored record sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(rs *store.RecordStore) error {
			names, err := rs.ListSets(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				cmd.Println("No stored record sets.")
				return nil
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		})
	},
}

var setsImportCmd = &cobra.Command{
	Use:   "import <name> <set.json>",
	Short: "Store a record set from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := recordio.LoadSet(args[1])
		if err != nil {
			return err
		}
		return withStore(func(rs *store.RecordStore) error {
			if err := rs.SaveSet(cmd.Context(), args[0], set); err != nil {
				return err
			}
			cmd.Printf("Stored %q: %d markers, %d photos\n",
				args[0], len(set.Markers), len(set.Photos))
			return nil
		})
	},
}

var setsExportCmd = &cobra.Command{
	Use:   "export <name> <set.json>",
	Short: "Write a stored record set to a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(rs *store.RecordStore) error {
			set, err := rs.LoadSet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := recordio.SaveSet(args[1], args[0], set); err != nil {
				return err
			}
			cmd.Printf("Exported %q -> %s\n", args[0], args[1])
			return nil
		})
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored record set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(rs *store.RecordStore) error {
			if err := rs.DeleteSet(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted %q\n", args[0])
			return nil
		})
	},
}

func init() {
	setsCmd.PersistentFlags().StringVar(&setsDB, "db", "", "database file (default from config)")
	setsCmd.AddCommand(setsListCmd, setsImportCmd, setsExportCmd, setsDeleteCmd)
	rootCmd.AddCommand(setsCmd)
}

// withStore opens the configured database, runs fn, and closes it.
func withStore(fn func(*store.RecordStore) error) error {
	path := setsDB
	if path == "" {
		path = cfg.DBPath
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer closeDB(db)
	return fn(store.NewRecordStore(db))
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
