package domain

import "errors"

var (
	// ErrIngestion reports that the input rows could not be read or lack a
	// required column. No pipeline stage runs after it.
	ErrIngestion = errors.New("ingestion failure")

	// ErrEmptyDataset reports that grouping found no turbines to render.
	ErrEmptyDataset = errors.New("no turbines found in the data")
)
