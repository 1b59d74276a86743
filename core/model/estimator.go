// Package model defines the estimator contracts shared by classifiers,
// transformers and model selection.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う (n_samples × 1)
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ParamsAccessor exposes hyperparameters under their scikit-learn names
// ("alpha", "max_iter", "loss", ...).
type ParamsAccessor interface {
	// GetParams はモデルのハイパーパラメータを取得
	GetParams() map[string]interface{}

	// SetParams はモデルのハイパーパラメータを設定
	// 未知のキーや型変換できない値はエラーになる
	SetParams(params map[string]interface{}) error
}

// Estimator is what grid search and the evaluator operate on.
type Estimator interface {
	Fitter
	Predictor
	ParamsAccessor

	// Clone はモデルの新しい未学習インスタンスを同じパラメータで作成
	Clone() Estimator
}

// Classifier は二値分類器のインターフェース
type Classifier interface {
	Estimator

	// PredictProba は各クラスの確率を予測 (n_samples × n_classes)
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// DecisionFunction は線形スコア w·x + b を返す (n_samples × 1)
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習されたクラスラベルを昇順で返す
	Classes() []int
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)

	// Clone は同じ設定の未学習インスタンスを返す
	Clone() Transformer
}
