// SPDX-License-Identifier: EPL-2.0

// Package pipeline converts one audio stream from an input container into
// an output file.
//
// New wires a container.Reader, a codec.Decoder, a filter.Graph, a
// codec.Encoder and a container.Writer together. Run then moves every packet
// of the best audio stream through them and drains the stages in order:
//
//	streaming         read, decode, filter, encode, write
//	decoder draining  decoder.SendEOF, then the same loop
//	filter draining   graph.Flush, then filter, encode, write
//	encoder draining  encoder.SendEOF, then write
//	finalized         writer.WriteTrailer
//
// Each stage may hold samples back, so every stage is drained to exhaustion
// after each input and again at the end. Skipping a phase loses the tail of
// the audio.
//
// Failures come back as *Error, naming the stage and stream, and wrap one of
// the audio error kinds:
//
//	p, err := pipeline.New(container.Input{Path: "in.flac"}, "out.wav", pipeline.Options{})
//	if errors.Is(err, audio.ErrNoAudioStream) {
//	    ...
//	}
//	defer p.Close()
//	err = p.Run(ctx)
//
// A pipeline is single threaded. Independent pipelines may run in parallel;
// RunAll does that for a list of jobs.
package pipeline
