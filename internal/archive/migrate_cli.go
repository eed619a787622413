package archive

import (
	"fmt"
	"io"
	"strconv"
)

// RunMigrateCommand applies a schema action to the archive at dbPath:
//
//	up             apply all pending migrations
//	down           roll back the latest migration
//	status         print the current version
//	force VERSION  record VERSION and clear the dirty flag
func RunMigrateCommand(args []string, dbPath string, w io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(w)
		return fmt.Errorf("missing migrate action")
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to archive: %w", err)
	}
	defer db.Close()

	switch action := args[0]; action {
	case "up":
		if err := db.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := db.MigrateDown(); err != nil {
			return err
		}
	case "status":
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: trackconsole migrate force <version>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number %q", args[1])
		}
		if err := db.MigrateForce(v); err != nil {
			return err
		}
	case "help":
		PrintMigrateHelp(w)
		return nil
	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("unknown migrate action %q", action)
	}

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "schema version %d", version)
	if dirty {
		fmt.Fprint(w, " (dirty)")
	}
	fmt.Fprintln(w)
	return nil
}

// PrintMigrateHelp writes the migrate usage.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprint(w, `Usage: trackconsole [-db PATH] migrate <action>

Actions:
  up             Apply all pending migrations
  down           Roll back the most recent migration
  status         Show the current schema version
  force VERSION  Set the version without migrating (recovery only)
  help           Show this help
`)
}
