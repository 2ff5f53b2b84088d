// Package policy provides the default planning, reflection, and replan
// policies. All three are pure, deterministic functions of their inputs.
package policy
