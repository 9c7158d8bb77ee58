package records

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/pkg/records"
)

// RecordsAction rebuilds the records table from the stored markdown files.
func RecordsAction(c *cli.Context) error {
	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	b := &records.Builder{
		Storage: app.Storage,
		Store:   app.DB,
		Logger:  app.Logger,
	}
	if !c.Bool("no-language") {
		b.Detector = records.NewDetector()
	}

	list, err := b.Build(c.Context)
	if err != nil {
		return fmt.Errorf("failed to build records: %w", err)
	}
	if c.Bool("summary") {
		fmt.Printf("Stored %d records in %s\n", len(list), app.DB.Path())
		return nil
	}
	return common.WriteOutput(os.Stdout, c.String("format"), list)
}
