// Package judge scores generated answers for faithfulness, completeness,
// and hallucination with an independent model pass.
//
// The judge is advisory: its output rides along with the query result and a
// failure to score never fails the query. When scoring is impossible the
// evaluation carries an explicit unscored marker instead of invented
// defaults, so downstream dashboards can tell "scored 3" from "could not
// score".
package judge
