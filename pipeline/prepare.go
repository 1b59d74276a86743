package pipeline

import (
	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
	"github.com/YuminosukeSato/logitlab/preprocessing"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

// Data is a table after encoding and splitting, plus its matrix views.
type Data struct {
	Encoded *dataset.Table
	Split   *model_selection.Split
	Views   *model_selection.Views
}

// Prepare one-hot encodes every column in categorical, checks that target
// is binary and splits the encoded table. Encoding happens before the split
// so both subsets share the same indicator columns.
func Prepare(t *dataset.Table, target string, categorical []string, opts ...model_selection.SplitOption) (*Data, error) {
	if t == nil {
		return nil, errors.NewValueError("pipeline.Prepare", "table is nil")
	}
	if err := dataset.CheckBinaryTarget(t, target); err != nil {
		return nil, err
	}

	encoded := t
	for _, col := range categorical {
		var err error
		encoded, err = preprocessing.OneHotEncode(encoded, col)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", col)
		}
	}

	split, err := model_selection.TrainTestSplit(encoded, target, opts...)
	if err != nil {
		return nil, err
	}
	views, err := split.XY()
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("pipeline").Info("Data prepared",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, encoded.Len(),
		log.FeaturesKey, len(views.FeatureNames),
		log.TrainSamplesKey, split.Train.Len(),
		log.TestSamplesKey, split.Test.Len(),
	)
	return &Data{Encoded: encoded, Split: split, Views: views}, nil
}
