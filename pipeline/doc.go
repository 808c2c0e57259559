// Package pipeline provides the shared machinery for running stages:
// retry with exponential backoff, progress tracking, the stage
// orchestrator behind the run command, and status aggregation.
package pipeline
