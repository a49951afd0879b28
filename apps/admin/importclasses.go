package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/shule/core/enrollment"
)

// importClasses loads classes in bulk from the scheduling tool's CSV export.
func (cli *commandLine) importClasses(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	importer := enrollment.NewImporter(cli.enrSvc, cli.usrSvc.FindTeacher, cli.logger)
	res, err := importer.Import(context.Background(), f)
	if err != nil {
		return err
	}
	fmt.Printf("created: %d, skipped: %d, failed: %d\n", res.Created, res.Skipped, res.Failed)
	return nil
}
