// Command zerosum renders two-character dialogue videos: it aligns an
// authored script against a word-level transcript, builds a frame-accurate
// animation timeline, and composites and encodes the final video.
package main
