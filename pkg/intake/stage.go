package intake

// Stage is a step of the intake pipeline. Stages run strictly in declaration
// order and none is skipped or repeated.
type Stage int

const (
	StageDemographicsStructured Stage = iota
	StageDemographicsFreeform
	StageSymptomIntake
	StageNotes
	StageDiagnosis
	StageClinical
	StageReferrals
	StageComplete
)

// Prompt template file names, read from the prompts directory.
const (
	PromptDemographics = "system_00_demographics.md"
	PromptIntake       = "system_01_intake.md"
	PromptNotes        = "system_02_prepare_notes.md"
	PromptDiagnosis    = "system_03_diagnosis.md"
	PromptClinical     = "system_04_clinical.md"
	PromptReferrals    = "system_05_referrals.md"
)

// Transcript speakers.
const (
	SpeakerPatient      = "PATIENT"
	SpeakerDemographics = "DEMOGRAPHICS"
	SpeakerIntake       = "INTAKE"
)

// Artifact kinds, used as the file name suffix.
const (
	KindChat      = "chat"
	KindNotes     = "notes"
	KindDiagnosis = "diagnosis"
	KindClinical  = "clinical"
	KindReferrals = "referrals"
)

// StageInfo describes what a stage reads, waits for and writes.
type StageInfo struct {
	Stage Stage

	// Prompt is the system prompt file the stage sends.
	Prompt string

	// Sentinels end the stage's free-text loop.
	Sentinels []string

	// Speaker labels the stage's replies in the transcript.
	Speaker string

	// Artifacts lists the kinds of file the stage writes.
	Artifacts []string

	// Banner is printed when a document stage starts; Header introduces its
	// output.
	Banner string
	Header string
}

var stageInfo = [...]StageInfo{
	StageDemographicsStructured: {
		Prompt:  PromptDemographics,
		Speaker: SpeakerDemographics,
	},
	StageDemographicsFreeform: {
		Prompt:    PromptDemographics,
		Sentinels: []string{"FINISHED", "SUBMIT"},
		Speaker:   SpeakerDemographics,
	},
	StageSymptomIntake: {
		Prompt:    PromptIntake,
		Sentinels: []string{"DONE"},
		Speaker:   SpeakerIntake,
	},
	StageNotes: {
		Prompt:    PromptNotes,
		Artifacts: []string{KindChat, KindNotes},
		Banner:    "Generating Intake Notes",
		Header:    "Notes version of conversation",
	},
	StageDiagnosis: {
		Prompt:    PromptDiagnosis,
		Artifacts: []string{KindDiagnosis},
		Banner:    "Generating Hypothesis Report",
		Header:    "Hypothesis Report",
	},
	StageClinical: {
		Prompt:    PromptClinical,
		Artifacts: []string{KindClinical},
		Banner:    "Preparing for Clinical Evaluation",
		Header:    "Clinical Evaluation",
	},
	StageReferrals: {
		Prompt:    PromptReferrals,
		Artifacts: []string{KindReferrals},
		Banner:    "Generating Referrals and Tests",
		Header:    "Referrals and Tests",
	},
	StageComplete: {},
}

// Info returns the description of s.
func (s Stage) Info() StageInfo {
	if s < 0 || int(s) >= len(stageInfo) {
		return StageInfo{Stage: s}
	}
	info := stageInfo[s]
	info.Stage = s
	return info
}

func (s Stage) String() string {
	switch s {
	case StageDemographicsStructured:
		return "demographics-structured"
	case StageDemographicsFreeform:
		return "demographics-freeform"
	case StageSymptomIntake:
		return "symptom-intake"
	case StageNotes:
		return "notes"
	case StageDiagnosis:
		return "diagnosis"
	case StageClinical:
		return "clinical"
	case StageReferrals:
		return "referrals"
	case StageComplete:
		return "complete"
	}
	return "unknown"
}

// Stages returns every stage in run order.
func Stages() []StageInfo {
	out := make([]StageInfo, 0, len(stageInfo))
	for s := StageDemographicsStructured; s <= StageComplete; s++ {
		out = append(out, s.Info())
	}
	return out
}

// PromptFiles returns the distinct prompt files a run needs, in the order
// they are first used.
func PromptFiles() []string {
	return []string{
		PromptDemographics,
		PromptIntake,
		PromptNotes,
		PromptDiagnosis,
		PromptClinical,
		PromptReferrals,
	}
}
