// Package actions holds the operation registry: the only way callers change a
// project. Every operation is a pure function from (state, arguments) to a new
// state, and the built-in set covers adding, removing, trimming, moving and
// decorating clips.
package actions
