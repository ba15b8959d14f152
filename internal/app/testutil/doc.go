// Package testutil holds test doubles and fixtures shared by package tests:
//
//   - MockTranscriber and MockExtractor: testify/mock implementations of the
//     transcription and extraction contracts.
//   - FakeTranscoder: a Transcoder that writes a tiny MP3 instead of running ffmpeg.
//   - ObservedLogger: a zap logger whose entries can be asserted on.
//   - SetupTestHistory: a throw-away SQLite run history.
//   - Consultation fixtures for the cr_consultation document type.
package testutil
