package queue

const (
	TypeTranslationBatch = "translation:batch"
	TypeSpeechMeeting    = "speech:meeting"
)

type TranslationBatchPayload struct {
	JobID  string   `json:"job_id"`
	Texts  []string `json:"texts"`
	Target string   `json:"target_language"`
	Source string   `json:"source_language,omitempty"`

	CallbackURL string `json:"callback_url,omitempty"`
}

type SpeechMeetingPayload struct {
	JobID       string `json:"job_id"`
	Audio       []byte `json:"audio"`
	Filename    string `json:"filename"`
	Language    string `json:"language"`
	NumSpeakers int    `json:"num_speakers"`
	CallbackURL string `json:"callback_url,omitempty"`
}
