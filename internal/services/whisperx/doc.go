// Package whisperx runs local speech recognition through WhisperX.
//
// WhisperX is launched with uvx so the Python environment is provisioned on
// demand. Each transcription writes JSON segments into a private temp directory
// which is parsed and removed before the call returns. The model size is fixed
// when the Service is constructed.
package whisperx
