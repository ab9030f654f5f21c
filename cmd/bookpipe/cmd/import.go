package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostfolio/bookpipe/internal/config"
	"github.com/hostfolio/bookpipe/internal/database"
	"github.com/hostfolio/bookpipe/internal/importer"
	"github.com/hostfolio/bookpipe/internal/observability"
	"github.com/hostfolio/bookpipe/internal/repository"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a booking export file from the command line",
	Long: `Import a booking export file (CSV) without the HTTP API.

The file is parsed, derived with the selected mapping template, and
committed in one pass. Listings that do not resolve to an existing
property abort the import unless --create-properties is given, in
which case a property is created for each of them.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("template", "", "Mapping template name (default template when empty)")
	importCmd.Flags().Bool("create-properties", false, "Create properties for unmapped listings")
	importCmd.Flags().Bool("dry-run", false, "Derive and report without committing")
	importCmd.Flags().String("database", "bookpipe.db", "Database DSN (file path for sqlite)")
}

func runImport(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	filePath := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cmd.Flags().Changed("database") {
		dsn, _ := cmd.Flags().GetString("database")
		cfg.Database.DSN = dsn
	}

	templateName, _ := cmd.Flags().GetString("template")
	createProperties, _ := cmd.Flags().GetBool("create-properties")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"), nil)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := runMigrations(db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	templateRepo := repository.NewMappingTemplateRepository(db.DB)
	propertyRepo := repository.NewPropertyRepository(db.DB)
	bookingRepo := repository.NewBookingRepository(db.DB)
	auditRepo := repository.NewBookingAuditRepository(db.DB)
	uploadRepo := repository.NewUploadRecordRepository(db.DB)

	service := importer.NewService(
		templateRepo,
		propertyRepo,
		bookingRepo,
		auditRepo,
		uploadRepo,
		observability.WithComponent(logger, "importer"),
	)

	ctx := context.Background()

	templateID := ""
	if templateName != "" {
		template, err := templateRepo.GetByName(ctx, templateName)
		if err != nil {
			return fmt.Errorf("loading template %q: %w", templateName, err)
		}
		if template == nil {
			return fmt.Errorf("template %q not found", templateName)
		}
		templateID = template.ID.String()
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer file.Close()

	session, err := service.CreateSession(ctx, filepath.Base(filePath), file)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filePath, err)
	}

	session, err = service.Preview(ctx, session.ID, templateID)
	if err != nil {
		return fmt.Errorf("deriving bookings: %w", err)
	}

	out := cmd.OutOrStdout()
	result := session.Result
	fmt.Fprintf(out, "Parsed %s: %d rows, %d listings\n",
		session.FileName, len(result.Drafts), len(session.Mappings))
	for _, group := range result.Groups {
		fmt.Fprintf(out, "  %s: %d bookings\n", group.ListingName, len(group.Drafts))
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "  warning: row %d field %s: %s\n",
			issue.RowIndex, issue.BookingField, issue.Reason)
	}
	for _, warning := range session.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}

	var unmapped []string
	for _, mapping := range session.Mappings {
		if mapping.Mapped() {
			continue
		}
		if createProperties {
			if _, err := service.SetPropertyMapping(ctx, session.ID, mapping.ListingName, "", true); err != nil {
				return fmt.Errorf("marking listing %q for creation: %w", mapping.ListingName, err)
			}
			continue
		}
		unmapped = append(unmapped, mapping.ListingName)
	}
	if len(unmapped) > 0 {
		return fmt.Errorf("unmapped listings: %s (use --create-properties or map them via the API)",
			strings.Join(unmapped, ", "))
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing committed")
		return nil
	}

	commit, err := service.Commit(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	fmt.Fprintf(out, "Committed %d bookings (upload %s)\n", commit.BookingCount, commit.UploadID)
	for _, warning := range commit.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}
	return nil
}
