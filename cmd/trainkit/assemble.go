package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/metrics"
	"github.com/neurlang/trainkit/tensor"
	"github.com/neurlang/trainkit/trainer"
)

func (a *app) assembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble <experiment.yaml>",
		Short: "Build every component of an experiment and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := config.Load(args[0])
			if err != nil {
				return err
			}
			a.override(exp)

			reg := prometheus.NewRegistry()
			c, err := trainer.Setup(exp, nil,
				trainer.WithLogger(a.logger),
				trainer.WithRecorder(metrics.NewRecorder(reg)))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := summarize(out, c); err != nil {
				return err
			}
			if !a.v.GetBool("metrics") {
				return nil
			}
			mfs, err := reg.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}
			return writeMetrics(out, mfs)
		},
	}
	cmd.Flags().AddFlagSet(assembleFlags())
	_ = a.v.BindPFlags(cmd.Flags())
	return cmd
}

func assembleFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("assemble", pflag.ContinueOnError)
	fs.Int64("seed", 0, "override the experiment seed")
	fs.Bool("gpu", false, "override device.use_gpu")
	fs.Int("gpu-id", 0, "override device.gpu_id")
	fs.Bool("metrics", false, "print assembly metrics in the prometheus text format")
	return fs
}

// override applies flags and TRAINKIT_* variables that were explicitly set.
func (a *app) override(exp *config.Experiment) {
	if a.v.IsSet("seed") {
		exp.Seed = a.v.GetInt64("seed")
	}
	if a.v.IsSet("gpu") {
		exp.Device.UseGPU = a.v.GetBool("gpu")
	}
	if a.v.IsSet("gpu-id") {
		exp.Device.GPUID = a.v.GetInt("gpu-id")
	}
}

func summarize(w io.Writer, c *trainer.Configs) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", c.RunID)
	fmt.Fprintf(tw, "seed\t%d\n", c.Seed)
	fmt.Fprintf(tw, "device\t%s\n", c.Device)
	fmt.Fprintf(tw, "model\t%s\t%d parameters\n", c.Model.Name(), tensor.Count(c.Model.Parameters()))
	fmt.Fprintf(tw, "optimizer\t%s\tlr %g\n", c.Optimizer.Name(), c.Optimizer.LR())
	fmt.Fprintf(tw, "lr_scheduler\t%s\tloss metric %t\n", c.Scheduler.Name(), c.UseLossMetric)
	fmt.Fprintf(tw, "loss_func\t%s\tweighted %t\n", c.Loss.Name(), c.Loss.Weight() != nil)
	fmt.Fprintf(tw, "train\t%d samples\t%d batches (%s)\n", c.TrainSet.Len(), c.TrainLoader.Len(), c.TrainLoader.Config().Policy)
	if c.ValidationLoader != nil {
		fmt.Fprintf(tw, "validation\t%d samples\t%d batches (%s)\n", c.ValidationSet.Len(), c.ValidationLoader.Len(), c.ValidationLoader.Config().Policy)
	}
	fmt.Fprintf(tw, "test\t%d samples\t%d batches (%s)\n", c.TestSet.Len(), c.TestLoader.Len(), c.TestLoader.Config().Policy)
	fmt.Fprintf(tw, "split digest\t%s\n", c.SplitDigest)
	mode := "train"
	if c.EvalModel {
		mode = "evaluate"
	}
	fmt.Fprintf(tw, "mode\t%s\t%d epochs, best by %s\n", mode, c.NumEpoch, c.Metric)
	if path, ok := c.ResumeSource(); ok {
		fmt.Fprintf(tw, "resume\t%s\n", path)
	}
	return tw.Flush()
}

func writeMetrics(w io.Writer, mfs []*dto.MetricFamily) error {
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
