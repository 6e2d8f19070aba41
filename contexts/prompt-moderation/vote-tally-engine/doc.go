// Package votetallyengine tallies weighted reinstatement votes for recalled
// prompts and activates a prompt once its total reaches the threshold.
//
// A voter gets one vote per prompt. Votes from the creator's group count
// double; the whole insert-tally-activate sequence is atomic per prompt, so
// concurrent voters observe a consistent total and the prompt activates
// exactly once. Admins can preview a tally or force activation when the
// threshold is already met.
package votetallyengine
