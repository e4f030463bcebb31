// Package pipeline provides a framework for executing run steps in sequence.
//
// The pipeline pattern is used to process a collection run through its
// stages: paged search collection, artifact export, and run-history
// persistence. Each stage is implemented as a Step that receives the
// current run and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running collections
package pipeline
