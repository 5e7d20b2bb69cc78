package model

// Operation identifies the kind of configuration-sync operation being audited.
type Operation string

const (
	OperationImport Operation = "import"
	OperationExport Operation = "export"
)

// Status is the outcome of an audited operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)
