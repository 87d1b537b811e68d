// Package audiofile decodes mono sources for the renderer and writes its
// stereo output.
//
// Supported sources are WAV and AIFF (integer PCM), MP3 and Ogg Vorbis.
// Multichannel sources keep their first channel only. Output is always a
// two-channel integer PCM WAV file.
package audiofile
