// Package pipeline wires the library pieces into the end-to-end workflow:
// load and encode a table, split it with a fixed seed, fit a linear
// classifier and measure accuracy on both subsets.
//
//	table, _ := dataset.LoadSAheart("SAheart.data")
//	data, _ := pipeline.Prepare(table, dataset.SAheartTarget, []string{dataset.ColFamHist},
//	    model_selection.WithRandomState(42))
//	clf := pipeline.NewStandardizedClassifier(linear_model.NewSGDClassifier(), "standard")
//	result, _ := pipeline.Train(clf, data.Views)
//	fmt.Println(result.TestAccuracy)
//
// Nothing here prints; callers decide how results are shown.
package pipeline
