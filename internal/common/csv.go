// Package common reads transaction records and training examples from CSV
// and JSON files.
package common

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"

	"github.com/gocarina/gocsv"
)

// RecordRow is the CSV layout of a transaction record. Either merchant
// column may be used; category is optional.
type RecordRow struct {
	Description  string `csv:"description"`
	Merchant     string `csv:"merchant"`
	MerchantName string `csv:"merchant_name"`
	Amount       string `csv:"amount"`
	Category     string `csv:"category"`
}

// ToRecord converts the row, parsing the amount.
func (r RecordRow) ToRecord() (models.TransactionRecord, error) {
	merchant := r.Merchant
	if merchant == "" {
		merchant = r.MerchantName
	}
	rec, err := models.NewRecord(r.Description, merchant, r.Amount)
	if err != nil {
		return models.TransactionRecord{}, err
	}
	rec.Category = strings.TrimSpace(r.Category)
	return rec, nil
}

// Reader decodes input files.
type Reader struct {
	delimiter rune
	logger    logging.Logger
}

// NewReader creates a Reader for CSV files separated by delimiter.
func NewReader(delimiter rune, logger logging.Logger) *Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// ReadRecords reads records from a .json file (array of objects) or, for any
// other extension, a CSV file with a header row.
func (r *Reader) ReadRecords(filePath string) ([]models.TransactionRecord, error) {
	r.logger.Info("Reading records", logging.Field{Key: logging.FieldInputFile, Value: filePath})

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening input file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			r.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	var records []models.TransactionRecord
	if isJSON(filePath) {
		records, err = DecodeRecordsJSON(file)
	} else {
		records, err = r.DecodeRecordsCSV(file)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filePath, err)
	}

	r.logger.Info("Successfully read records", logging.Field{Key: logging.FieldCount, Value: len(records)})
	return records, nil
}

// ReadTrainingExamples reads labeled records. Every record must carry a category.
func (r *Reader) ReadTrainingExamples(filePath string) ([]models.TrainingExample, error) {
	records, err := r.ReadRecords(filePath)
	if err != nil {
		return nil, err
	}
	return ToTrainingExamples(records)
}

// ToTrainingExamples pairs each record with its category label.
func ToTrainingExamples(records []models.TransactionRecord) ([]models.TrainingExample, error) {
	examples := make([]models.TrainingExample, 0, len(records))
	for i, rec := range records {
		if rec.Category == "" {
			return nil, fmt.Errorf("record %d has no category", i+1)
		}
		label := models.CategoryLabel(rec.Category)
		rec.Category = ""
		examples = append(examples, models.TrainingExample{Record: rec, Category: label})
	}
	return examples, nil
}

// DecodeRecordsCSV parses CSV with a header row into records.
func (r *Reader) DecodeRecordsCSV(in io.Reader) ([]models.TransactionRecord, error) {
	csvReader := csv.NewReader(in)
	csvReader.Comma = r.delimiter
	csvReader.TrimLeadingSpace = true

	var rows []RecordRow
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}

	records := make([]models.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := row.ToRecord()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeRecordsJSON parses a JSON array of record objects.
func DecodeRecordsJSON(in io.Reader) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return records, nil
}

func isJSON(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".json")
}
