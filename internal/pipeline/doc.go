// Package pipeline runs files through the upload host's steps.
//
// An upload goes gate → authorize → size → stage → sanitize → store →
// audit; a batch file goes size → read → sanitize → write → audit. Each
// stage is a Step acting on a Job. A step that refuses the file records a
// rejection on the job; later steps are skipped unless they are final
// steps (store, write, audit), which always run so staged files are
// discarded and every outcome is audited.
//
// BatchProcessor runs many jobs with bounded concurrency using errgroup.
package pipeline
