// Package config defines the experiment document: which component to build for every slot
// of a training pipeline, with which arguments, plus the scalar run parameters.
package config

import "k8s.io/utils/ptr"

// ComponentSpec names a registered component and the arguments to build it with.
type ComponentSpec struct {
	Name string `yaml:"name"`
	Args Args   `yaml:"init_args,omitempty"`
}

// DeviceSpec selects where the model runs.
type DeviceSpec struct {
	UseGPU   bool `yaml:"use_gpu"`
	GPUID    int  `yaml:"gpu_id"`
	Parallel bool `yaml:"parallel"`
}

// ModelSpec is a component spec with an optional quantization request.
type ModelSpec struct {
	ComponentSpec `yaml:",inline"`

	QuantModel bool      `yaml:"quant_model"`
	QuantArgs  QuantArgs `yaml:"quant_args,omitempty"`
}

// QuantArgs parameterizes the quantization collaborator.
type QuantArgs struct {
	// Bits per weight, 8 when unset.
	Bits *int `yaml:"bits,omitempty"`
}

// BitsOrDefault returns the configured bit width or 8.
func (q QuantArgs) BitsOrDefault() int {
	return ptr.Deref(q.Bits, 8)
}

// DatasetSpec describes the dataset, its two preprocessing pipelines and the split policy.
type DatasetSpec struct {
	Name string `yaml:"name"`

	// Aug selects AugTransforms over BaseTransforms for the training partition.
	Aug            bool            `yaml:"aug"`
	BaseTransforms []ComponentSpec `yaml:"base_transforms,omitempty"`
	AugTransforms  []ComponentSpec `yaml:"aug_transforms,omitempty"`

	// TrainSet and TestSet are forwarded to the dataset constructor.
	TrainSet Args `yaml:"trainset,omitempty"`
	TestSet  Args `yaml:"testset,omitempty"`

	TrainValidSplit float64 `yaml:"train_valid_split"`
	UseValidation   bool    `yaml:"use_validation"`
}

// TrainSpec carries the loader settings and the scalar run parameters.
type TrainSpec struct {
	Trainer string `yaml:"trainer,omitempty"`

	BatchSize     int  `yaml:"batch_size"`
	NumWorker     int  `yaml:"num_worker"`
	DropLastBatch bool `yaml:"drop_last_batch"`

	UseTrainWeightedSampler bool `yaml:"use_train_weighted_sampler"`
	UseTestWeightedSampler  bool `yaml:"use_test_weighted_sampler"`

	NumEpoch       int    `yaml:"num_epoch"`
	ResultDir      string `yaml:"result_dir"`
	ModelSrcPath   string `yaml:"model_src_path,omitempty"`
	ResumeFromBest bool   `yaml:"resume_from_best"`
	PrintFreq      int    `yaml:"print_freq"`

	// TrainModel is true unless set; false means evaluate only.
	TrainModel  *bool  `yaml:"train_model,omitempty"`
	SaveModelBy string `yaml:"save_model_by,omitempty"`
}

// Training reports whether the run trains (true) or only evaluates.
func (t TrainSpec) Training() bool {
	return ptr.Deref(t.TrainModel, true)
}

// Experiment is the whole user document.
type Experiment struct {
	Seed int64 `yaml:"seed"`

	Device      DeviceSpec    `yaml:"device"`
	Model       ModelSpec     `yaml:"model"`
	Optimizer   ComponentSpec `yaml:"optimizer"`
	LRScheduler ComponentSpec `yaml:"lr_scheduler"`
	LossFunc    ComponentSpec `yaml:"loss_func"`
	Dataset     DatasetSpec   `yaml:"dataset"`
	Train       TrainSpec     `yaml:"train"`
}
