// Package workflow drives queue items through the generation pipeline.
//
// A Manager runs a pool of identical workers. Each worker repeatedly asks
// the queue store for the oldest item whose status marks the start of a
// registered stage, claims it with an atomic status transition, and runs
// the stage handler while a heartbeat loop keeps the item's lease fresh.
// Items whose heartbeats go stale (a crashed or killed worker) are rolled
// back to the start of their stage and picked up again.
//
// Stage failures are classified through the services error taxonomy:
// validation and configuration problems park the item in review for an
// operator, everything else is marked failed and can be retried.
package workflow
