package fetch

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
)

// SupplementsAction appends supplementary material to existing markdown files.
func SupplementsAction(c *cli.Context) error {
	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	added, skipped, err := app.Downloader.AddSupplementsToExisting(c.Context, c.Bool("overwrite"))
	if err != nil {
		return fmt.Errorf("failed to add supplements: %w", err)
	}
	fmt.Printf("Supplements added to %d files (%d skipped)\n", added, skipped)
	return nil
}

// ClearCacheAction removes the identifier and supplement caches.
func ClearCacheAction(c *cli.Context) error {
	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Downloader.ClearCaches(app.DB, app.SupplementCache); err != nil {
		return fmt.Errorf("failed to clear caches: %w", err)
	}
	fmt.Println("All caches cleared")
	return nil
}
