package faq

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/oyado/faqbot/pkg/errors"
)

type csvRecord struct {
	Question string
	Answer   string
	Topic    string
}

// parseCSV reads question/answer rows. The first row may be a header
// (question,answer[,topic]); a third column carries the optional topic label.
func parseCSV(r io.Reader) ([]csvRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []csvRecord
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(CodeInvalid, fmt.Sprintf("malformed csv at line %d", line+1), err)
		}
		line++
		if line == 1 && isHeaderRow(row) {
			continue
		}
		if len(row) < 2 {
			return nil, apperrors.Wrap(CodeInvalid,
				fmt.Sprintf("line %d: expected question and answer columns", line), nil)
		}
		record := csvRecord{
			Question: strings.TrimSpace(row[0]),
			Answer:   strings.TrimSpace(row[1]),
		}
		if len(row) > 2 {
			record.Topic = strings.TrimSpace(row[2])
		}
		if record.Question == "" || record.Answer == "" {
			return nil, apperrors.Wrap(CodeInvalid,
				fmt.Sprintf("line %d: question and answer cannot be empty", line), nil)
		}
		records = append(records, record)
	}
	return records, nil
}

func isHeaderRow(row []string) bool {
	if len(row) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), "question") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "answer")
}

// writeCSV emits entries with a header row.
func writeCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"question", "answer", "topic"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write([]string{entry.Question, entry.Answer, entry.Topic}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
