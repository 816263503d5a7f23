package models

// Stage identifies where an application sits in the onboarding pipeline.
type Stage string

const (
	StageApplication         Stage = "APPLICATION"
	StageDocumentSubmission  Stage = "DOCUMENT_SUBMISSION"
	StageEvaluation          Stage = "EVALUATION"
	StageContractNegotiation Stage = "CONTRACT_NEGOTIATION"
	StageContractSigning     Stage = "CONTRACT_SIGNING"
	StageSystemSetup         Stage = "SYSTEM_SETUP"
	StageTraining            Stage = "TRAINING"
	StageGoLive              Stage = "GO_LIVE"
	StageCompleted           Stage = "COMPLETED"
)

// stageCheckpoints maps each stage to its completion percentage. Lookups go
// through this fixed table only.
var stageCheckpoints = map[Stage]int{
	StageApplication:         12,
	StageDocumentSubmission:  25,
	StageEvaluation:          37,
	StageContractNegotiation: 50,
	StageContractSigning:     62,
	StageSystemSetup:         75,
	StageTraining:            87,
	StageGoLive:              95,
	StageCompleted:           100,
}

// Checkpoint returns the completion percentage for the stage, or 0 for an
// unknown stage.
func (s Stage) Checkpoint() int {
	return stageCheckpoints[s]
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	_, ok := stageCheckpoints[s]
	return ok
}
