// Package gemini transcribes media through the Gemini API.
//
// Audio is extracted locally, uploaded with the Files API, and the model is
// asked for a JSON transcript with segment and word timings. The response is
// validated and converted into transcript.Transcript so the rest of the
// pipeline cannot tell it apart from a local WhisperX run.
package gemini
