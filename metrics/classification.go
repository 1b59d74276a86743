// Package metrics provides classification scores for binary and
// integer-labelled predictions.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// 確率のクリップに使う下限
const probEpsilon = 1e-15

// Accuracy は正解率（予測がラベルと一致する割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyScore is Accuracy for n×1 matrices, the shape estimators return
// from Predict. The result is 1.0 exactly when every row matches.
func AccuracyScore(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("AccuracyScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(t, p)
}

// ClassificationError は誤分類率（1 - 正解率）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// BinaryLogLoss は二値分類の交差エントロピー損失を計算する
// yPred は陽性クラスの確率で、[1e-15, 1-1e-15] にクリップされる
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yPred.AtVec(i), probEpsilon, 1-probEpsilon)
		if yTrue.AtVec(i) == 1 {
			sum -= errors.StabilizeLog(p)
		} else {
			sum -= errors.StabilizeLog(1 - p)
		}
	}
	return sum / float64(n), nil
}

// LogLoss is BinaryLogLoss for matrices. proba may be n×1 (positive class)
// or n×2 as returned by PredictProba, in which case column 1 is used.
func LogLoss(yTrue, proba mat.Matrix) (float64, error) {
	if proba == nil {
		return 0, errors.NewValueError("LogLoss", "nil probabilities")
	}
	col := 0
	if _, c := proba.Dims(); c == 2 {
		col = 1
	}
	t, err := column("LogLoss", yTrue, 0)
	if err != nil {
		return 0, err
	}
	p, err := column("LogLoss", proba, col)
	if err != nil {
		return 0, err
	}
	return BinaryLogLoss(t, p)
}

// BrierScore is the mean squared difference between the positive-class
// probability and the 0/1 label.
func BrierScore(yTrue, yProb *mat.VecDense) (float64, error) {
	n, err := checkPair("BrierScore", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BrierScore", yTrue); err != nil {
		return 0, err
	}
	var diff mat.VecDense
	diff.SubVec(yTrue, yProb)
	return mat.Dot(&diff, &diff) / float64(n), nil
}

// AUC はROC曲線下面積を Mann-Whitney の U 統計量から計算する
// 同順位のスコアには平均順位を割り当てる
// 陽性または陰性しか含まれない場合は 0.5 を返し、警告を出す
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return yScore.AtVec(order[a]) < yScore.AtVec(order[b])
	})

	var nPos, nNeg, rankSum float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore.AtVec(order[j+1]) == yScore.AtVec(order[i]) {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue.AtVec(order[k]) == 1 {
				rankSum += avgRank
				nPos++
			} else {
				nNeg++
			}
		}
		i = j + 1
	}

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in y_true", 0.5))
		return 0.5, nil
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg), nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（最初の列を使用）
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	t, s, err := columnPair("AUCMatrix", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	return AUC(t, s)
}

// ConfusionMatrix counts binary outcomes with 1 as the positive class.
type ConfusionMatrix struct {
	TN, FP, FN, TP int
}

// Total returns the number of samples counted.
func (c ConfusionMatrix) Total() int {
	return c.TN + c.FP + c.FN + c.TP
}

// NewConfusionMatrix tallies predictions against labels.
func NewConfusionMatrix(yTrue, yPred mat.Matrix) (ConfusionMatrix, error) {
	t, p, err := columnPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return ConfusionMatrix{}, err
	}
	if err := checkBinary("ConfusionMatrix", t); err != nil {
		return ConfusionMatrix{}, err
	}
	if err := checkBinary("ConfusionMatrix", p); err != nil {
		return ConfusionMatrix{}, err
	}

	var cm ConfusionMatrix
	for i := 0; i < t.Len(); i++ {
		switch actual, pred := t.AtVec(i), p.AtVec(i); {
		case actual == 1 && pred == 1:
			cm.TP++
		case actual == 1:
			cm.FN++
		case pred == 1:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm, nil
}

// PrecisionRecallF1 computes the positive-class scores. A zero denominator
// yields 0 and an UndefinedMetricWarning.
func PrecisionRecallF1(yTrue, yPred mat.Matrix) (precision, recall, f1 float64, err error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, 0, 0, err
	}
	precision = ratio("precision", "no predicted positives", cm.TP, cm.TP+cm.FP)
	recall = ratio("recall", "no true positives in y_true", cm.TP, cm.TP+cm.FN)
	if precision+recall > 0 {
		f1 = errors.SafeDivide(2*precision*recall, precision+recall)
	}
	return precision, recall, f1, nil
}

func ratio(metric, condition string, num, den int) float64 {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(metric, condition, 0))
		return 0
	}
	return errors.SafeDivide(float64(num), float64(den))
}

func checkPair(op string, a, b *mat.VecDense) (int, error) {
	if a == nil || b == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := a.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if b.Len() != n {
		return 0, errors.NewDimensionError(op, n, b.Len(), 0)
	}
	return n, nil
}

func checkBinary(op string, v *mat.VecDense) error {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); x != 0 && x != 1 {
			return errors.Wrapf(errors.ErrNotBinary, "%s: label %v at index %d", op, x, i)
		}
	}
	return nil
}

func columnPair(op string, a, b mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	t, err := column(op, a, 0)
	if err != nil {
		return nil, nil, err
	}
	p, err := column(op, b, 0)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

func column(op string, m mat.Matrix, j int) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	return mat.NewVecDense(r, mat.Col(nil, j, m)), nil
}
