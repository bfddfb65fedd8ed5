// Package workflow drives the planning pipeline. A manager fans scanned
// groups out to a bounded set of worker lanes, runs the stages sequentially
// for each group, and reduces every group to exactly one outcome. Groups
// never share state, so a failure in one leaves its siblings running.
package workflow
