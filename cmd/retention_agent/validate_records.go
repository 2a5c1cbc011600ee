package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-retention/internal/schemas"
)

var validateRecordsCmd = &cobra.Command{
	Use:   "validate-records",
	Short: "Validate a student records JSON file",
	Long:  "Validate a student records JSON file, such as the output of parse-roster, against the student_records schema.",
	RunE:  runValidateRecords,
}

var validateRecordsInput string

func init() {
	validateRecordsCmd.Flags().StringVarP(&validateRecordsInput, "in", "i", "", "Path to the records JSON file (required)")
	if err := validateRecordsCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
	rootCmd.AddCommand(validateRecordsCmd)
}

func runValidateRecords(cmd *cobra.Command, _ []string) error {
	err := schemas.ValidateStudentRecordsFile(validateRecordsInput)
	var validationErr *schemas.ValidationError
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", validateRecordsInput)
		return nil
	case errors.As(err, &validationErr):
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), validationErr.Error())
		return fmt.Errorf("%s has %d schema violation(s)", validateRecordsInput, len(validationErr.Errors))
	default:
		return err
	}
}
