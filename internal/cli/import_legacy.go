package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ewen-lbh/loca7/internal/config"
	"github.com/ewen-lbh/loca7/internal/database"
	"github.com/ewen-lbh/loca7/internal/importer"
)

// ImportLegacyCommand runs the one-shot migration from the old site's
// database dumps into a fresh database.
type ImportLegacyCommand struct {
	DataDir      string
	StopsPath    string
	DatabasePath string
	PhotosDir    string
	SummaryPath  string
	MaxWidth     int
	Quality      int
	DryRun       bool
	Verbose      bool
}

func NewImportLegacyCommand() *ImportLegacyCommand {
	return &ImportLegacyCommand{}
}

func (cmd *ImportLegacyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-legacy", flag.ExitOnError)

	fs.StringVar(&cmd.DataDir, "data", config.DefaultLegacyDataDir, "Directory holding logements.json, photos.json and the uploads/ tree")
	fs.StringVar(&cmd.StopsPath, "stops", config.DefaultStopsPath, "Path to the transit stops dataset (JSON)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file to import into")
	fs.StringVar(&cmd.PhotosDir, "photos-out", config.DefaultPhotosDir, "Directory receiving the resized listing photos (recreated empty)")
	fs.StringVar(&cmd.SummaryPath, "summary", "./created-users.json", "Where to write the created-users report")
	fs.IntVar(&cmd.MaxWidth, "max-width", 1000, "Maximum photo width in pixels, never upscaled")
	fs.IntVar(&cmd.Quality, "quality", 80, "JPEG re-encode quality")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and resolve everything without writing")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-legacy [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import listings, owners and photos from the old site's dumps.\n\n")
		fmt.Fprintf(os.Stderr, "WARNING: this wipes every listing already in the database. Only\n")
		fmt.Fprintf(os.Stderr, "accounts, sessions and pending tokens survive the import.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s import-legacy -data ./old-data -dry-run\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Full import into a fresh database:\n")
		fmt.Fprintf(os.Stderr, "  %s import-legacy -data ./old-data -db ./loca7.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return nil
}

func (cmd *ImportLegacyCommand) Run() error {
	fmt.Println("Legacy Import")
	fmt.Println("=============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.DataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory not found: %s", cmd.DataDir)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("Data: %s\n", cmd.DataDir)
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	im := importer.New(db, importer.Options{
		DataDir:       cmd.DataDir,
		StopsPath:     cmd.StopsPath,
		PhotosDir:     cmd.PhotosDir,
		SummaryPath:   cmd.SummaryPath,
		MaxPhotoWidth: cmd.MaxWidth,
		PhotoQuality:  cmd.Quality,
		DryRun:        cmd.DryRun,
		Verbose:       cmd.Verbose,
	})

	summary, err := im.Run()
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Users created: %d\n", summary.Users)
	fmt.Printf("Listings created: %d\n", summary.Listings)
	fmt.Printf("Photo records created: %d\n", summary.Photos)

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	fmt.Printf("\nCreated-users report: %s\n", cmd.SummaryPath)
	fmt.Println("\nImport complete!")
	return nil
}
