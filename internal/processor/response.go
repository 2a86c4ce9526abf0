package processor

import "encoding/json"

// Failure messages returned to callers
const (
	MsgTranscriptionFailed = "transcription failed"
	MsgWordNotRecognized   = "word not recognized"
	MsgInsufficientAssets  = "insufficient sign assets"
	MsgGIFFailed           = "gif generation failed"
)

// Pipeline stages reported to hooks
const (
	StageCapture  = "capture"
	StageValidate = "validate"
	StageResolve  = "resolve"
	StageAssemble = "assemble"
	StageDone     = "done"
)

// Response is the outcome of one pipeline run
type Response struct {
	Success        bool
	SpokenText     string
	TranslatedText string
	PredictedLabel int
	PredictedSign  string
	GIFURL         string
	Error          string

	// Stage is where the run ended; not part of the JSON body
	Stage string
}

type successBody struct {
	Success        bool   `json:"success"`
	SpokenText     string `json:"spoken_text"`
	TranslatedText string `json:"translated_text"`
	PredictedLabel int    `json:"predicted_label"`
	PredictedSign  string `json:"predicted_sign"`
	GIFURL         string `json:"gif_url"`
}

type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits the success or the failure shape, never both
func (r Response) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(failureBody{Error: r.Error})
	}
	return json.Marshal(successBody{
		Success:        true,
		SpokenText:     r.SpokenText,
		TranslatedText: r.TranslatedText,
		PredictedLabel: r.PredictedLabel,
		PredictedSign:  r.PredictedSign,
		GIFURL:         r.GIFURL,
	})
}

func failure(stage, msg string) Response {
	return Response{Success: false, Error: msg, Stage: stage, PredictedLabel: -1}
}
