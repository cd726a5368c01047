package output

import (
	"fmt"
	"io"
	"os"
)

// ReportWriter writes rendered reports one after another.
type ReportWriter struct {
	out  io.Writer
	file *os.File
}

// NewReportWriter writes reports to out.
func NewReportWriter(out io.Writer) *ReportWriter {
	return &ReportWriter{out: out}
}

// OpenReportWriter creates outputPath, or falls back to stdout when it is empty.
func OpenReportWriter(outputPath string, stdout io.Writer) (*ReportWriter, error) {
	out, file, err := openOutputWriter(outputPath, stdout)
	if err != nil {
		return nil, err
	}
	return &ReportWriter{out: out, file: file}, nil
}

// Write writes one report followed by a newline.
func (w *ReportWriter) Write(report string) error {
	_, err := fmt.Fprintln(w.out, report)
	return err
}

// Close closes the output file, if any.
func (w *ReportWriter) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

func openOutputWriter(outputPath string, stdout io.Writer) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}
