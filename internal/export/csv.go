package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	utf8BOM      = "\uFEFF"
	csvDelimiter = ";"
)

var csvHeaders = []string{"ID", "Nombre", "Nivel(Anterior)", "Horario(Anterior)", "Turno", "Estado"}

// WriteCSV writes rows as a spreadsheet-friendly CSV: UTF-8 BOM, semicolon delimited,
// every field quoted, rows separated by "\n" with no trailing line break.
func WriteCSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if _, err := bw.WriteString(csvLine(csvHeaders)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for _, r := range rows {
		if _, err := bw.WriteString("\n" + csvLine(r.values())); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func csvLine(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = csvQuote(v)
	}
	return strings.Join(quoted, csvDelimiter)
}

func csvQuote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
