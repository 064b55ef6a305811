// Command trainkit assembles a training pipeline from a YAML experiment and reports what it built.
//
//	trainkit assemble experiment.yaml [--seed N] [--gpu] [--gpu-id N] [--metrics]
//	trainkit components
//
// Seed and device can also be overridden through TRAINKIT_SEED, TRAINKIT_GPU and TRAINKIT_GPU_ID.
package main
