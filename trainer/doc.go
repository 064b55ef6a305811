// Package trainer assembles a training pipeline from an experiment document.
//
// Setup resolves every component by name in a fixed order: device, model (quantized and
// replicated when requested), optimizer, scheduler, datasets and their split, loaders, loss.
// The returned Configs is consumed read-only by the training loop; Setup never returns a
// partially built one.
//
// All randomness is explicit. Setup derives independent streams from the experiment seed
// for model initialization, the train/validation split, the loaders and the training loop,
// so the split does not depend on how many numbers the model initializer drew.
package trainer
