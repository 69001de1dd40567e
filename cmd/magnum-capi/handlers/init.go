package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = wizard.FileExists

	// confirmOverwrite asks before replacing an existing record.
	confirmOverwrite = wizard.ConfirmOverwrite

	// runWizard runs the interactive wizard.
	runWizard = wizard.RunWizard

	// writeRecord writes the record to a file.
	writeRecord = wizard.WriteRecord
)

// Init runs the record wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string, advanced bool) error {
	if fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	printWelcome()

	result, err := runWizard(ctx, advanced)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	c, err := wizard.BuildRecord(result)
	if err != nil {
		return fmt.Errorf("invalid cluster record: %w", err)
	}

	if err := writeRecord(c, outputPath); err != nil {
		return fmt.Errorf("failed to write cluster record: %w", err)
	}

	printInitSuccess(outputPath, c)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "magnum-capi - Kubernetes clusters through the Cluster API")
	fmt.Fprintln(out, "=========================================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This wizard creates a cluster record for 'magnum-capi cluster create'.")
	fmt.Fprintln(out)
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, c v1alpha1.Cluster) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Cluster record saved!")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  File: %s\n", outputPath)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Cluster Summary")
	fmt.Fprintln(out, "---------------")
	fmt.Fprintf(out, "  Name:       %s\n", c.Name)
	fmt.Fprintf(out, "  ID:         %s\n", c.ID)
	for _, ng := range c.NodeGroups {
		fmt.Fprintf(out, "  %-11s %d x %s\n", string(ng.Role)+":", ng.NodeCount, ng.FlavorID)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Next Steps")
	fmt.Fprintln(out, "----------")
	fmt.Fprintf(out, "  1. Review %s if needed\n", outputPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  2. Create your cluster:")
	fmt.Fprintf(out, "     magnum-capi cluster create -f %s\n", outputPath)
	fmt.Fprintln(out)
}
