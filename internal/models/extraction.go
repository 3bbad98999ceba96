package models

// ExtractionResult is the raw OCR text of an image.
type ExtractionResult struct {
	RawText          string `json:"rawText"`
	IsTabularLooking bool   `json:"isTabularLooking"` // comma or tab present
}

// TableProfile summarizes a CSV as sniffed by the profiler.
type TableProfile struct {
	Rows    int64         `json:"rows" msgpack:"rows"`
	Columns []ColumnShape `json:"columns" msgpack:"columns"`
}

// ColumnShape is a column name and its inferred type.
type ColumnShape struct {
	Name string `json:"name" msgpack:"name"`
	Type string `json:"type" msgpack:"type"`
}
