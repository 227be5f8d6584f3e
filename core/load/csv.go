package load

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV parses a comma-separated file, decoding GBK when the bytes are not UTF-8.
func readCSV(path string, _ Options) (string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	data, err = decodeText(data)
	if err != nil {
		return "", nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("parse csv: %w", err)
	}
	return "", rows, nil
}

// decodeText strips a UTF-8 BOM or converts GBK bytes to UTF-8.
func decodeText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode gbk: %w", err)
	}
	if !utf8.Valid(decoded) {
		return nil, fmt.Errorf("unknown text encoding")
	}
	return decoded, nil
}
