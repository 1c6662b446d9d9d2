// Package costmodel predicts the execution time and memory of a factor
// update strategy from statistics about its plan.
//
// A Model is a linear regression over standardized features:
//
//	time = Intercept + Σ Weight·(feature − Mean)/Scale
//
// Coefficients hold one Model per strategy. They are calibration data, not
// semantics: DefaultCoefficients returns one min-sum calibration
// and deployments load their own from YAML.
package costmodel
