// Package svm implements epsilon-insensitive Support Vector Regression with
// an RBF kernel, trained by sequential minimal optimization on the dual.
package svm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/svrkit/core/model"
	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// Solver defaults. Tol matches scikit-learn's SVR stopping tolerance.
const (
	defaultTol     = 1e-3
	defaultMinIter = 50000
	defaultMaxIter = 1000000
	boundEps       = 1e-9
	zeroEps        = 1e-12
)

// SVR は RBFカーネルのepsilon-SVRモデル
//
// 双対問題を beta_i = alpha_i - alpha_i* の形で解く:
//
//	minimize   (1/2) beta' K beta - y' beta + epsilon * sum |beta_i|
//	subject to sum beta_i = 0,  |beta_i| <= C
//
// 各反復で最大違反ペア (i, j) を選び、e_i - e_j 方向の1次元部分問題を
// 厳密に解く。epsilon項は区分線形なので、停留点候補と折れ点を列挙して
// 最小値を取る。
type SVR struct {
	model.BaseEstimator

	// C は正則化の強さ（大きいほど訓練点に忠実にフィットする）
	C float64

	// Epsilon はepsilonチューブの半幅（この範囲内の誤差は罰しない）
	Epsilon float64

	// Gamma はRBFカーネル幅の指定
	Gamma Gamma

	// Tol はKKT違反の許容値（0以下ならデフォルト値を使用）
	Tol float64

	// MaxIter は反復回数の上限（0以下なら自動設定）
	MaxIter int

	// 学習結果
	gamma      float64
	intercept  float64
	supportX   [][]float64
	dualCoef   []float64
	nFeatures  int
	iterations int
}

// NewSVR はデフォルトのハイパーパラメータ（C=1, epsilon=0.1, gamma="scale"）
// でSVRを作成する
func NewSVR() *SVR {
	return &SVR{
		C:       1.0,
		Epsilon: 0.1,
		Gamma:   DefaultGamma(),
	}
}

// Fit は訓練データでモデルを学習させる
//
// y は n×1 の列ベクトルでなければならない。
func (s *SVR) Fit(X, y mat.Matrix) error {
	n, c := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "SVR.Fit")
	}
	if ry != n {
		return errors.NewDimensionError("SVR.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("SVR.Fit", "y must be a column vector")
	}
	if s.C <= 0 {
		return errors.NewValidationError("C", "must be positive", s.C)
	}
	if s.Epsilon < 0 {
		return errors.NewValidationError("epsilon", "must be non-negative", s.Epsilon)
	}

	gamma, err := s.Gamma.Resolve(X)
	if err != nil {
		return err
	}
	s.gamma = gamma
	s.nFeatures = c

	rows := matrixRows(X)
	yv := make([]float64, n)
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValueError("SVR.Fit", "y contains NaN or Inf")
		}
		yv[i] = v
	}

	beta, iters, converged := s.solve(rows, yv)
	s.iterations = iters
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("SVR", iters, ""))
	}

	s.extractSupport(rows, beta)
	s.SetFitted()
	return nil
}

// solve はSMO反復を実行し、双対変数betaを返す
func (s *SVR) solve(rows [][]float64, yv []float64) (beta []float64, iters int, converged bool) {
	n := len(rows)
	K := rbfKernelMatrix(rows, s.gamma)

	tol := s.Tol
	if tol <= 0 {
		tol = defaultTol
	}
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 100 * n
		if maxIter < defaultMinIter {
			maxIter = defaultMinIter
		}
		if maxIter > defaultMaxIter {
			maxIter = defaultMaxIter
		}
	}

	beta = make([]float64, n)
	// grad は目的関数の滑らかな部分の勾配 K*beta - y（初期状態では -y）
	grad := make([]float64, n)
	for i := range grad {
		grad[i] = -yv[i]
	}

	eps := s.Epsilon
	C := s.C

	for iters = 0; iters < maxIter; iters++ {
		// 最大違反ペアの選択:
		// upDeriv(k)   = beta_k を増やしたときの方向微分（beta_k < C で実行可能）
		// downDeriv(k) = beta_k を減らしたときの方向微分（beta_k > -C で実行可能）
		i, j := -1, -1
		upMin, downMin := math.Inf(1), math.Inf(1)

		for k := 0; k < n; k++ {
			if beta[k] < C-C*boundEps {
				up := grad[k] + eps
				if beta[k] < 0 {
					up = grad[k] - eps
				}
				if up < upMin {
					upMin = up
					i = k
				}
			}
		}
		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			if beta[k] > -C+C*boundEps {
				down := -grad[k] + eps
				if beta[k] > 0 {
					down = -grad[k] - eps
				}
				if down < downMin {
					downMin = down
					j = k
				}
			}
		}

		if i < 0 || j < 0 || upMin+downMin > -tol {
			s.intercept = computeIntercept(beta, grad, C, eps)
			return beta, iters, true
		}

		d := s.lineSearch(K, beta, grad, i, j)
		if d <= zeroEps {
			// 数値的に進展しない場合はこれ以上改善できない
			s.intercept = computeIntercept(beta, grad, C, eps)
			return beta, iters, true
		}

		beta[i] += d
		beta[j] -= d
		Ki, Kj := K[i], K[j]
		for k := 0; k < n; k++ {
			grad[k] += d * (Ki[k] - Kj[k])
		}
	}

	s.intercept = computeIntercept(beta, grad, C, eps)
	return beta, iters, false
}

// lineSearch は e_i - e_j 方向の1次元部分問題を厳密に解く
//
//	phi(d) = a*d + (eta/2)*d^2
//	       + eps*(|beta_i + d| - |beta_i|) + eps*(|beta_j - d| - |beta_j|)
//
// を d ∈ [0, dhi] 上で最小化する。phi は区分二次関数なので、各符号領域の
// 停留点と折れ点、区間端点だけ調べれば厳密な最小点が得られる。
func (s *SVR) lineSearch(K [][]float64, beta, grad []float64, i, j int) float64 {
	eps := s.Epsilon
	C := s.C

	eta := K[i][i] + K[j][j] - 2*K[i][j]
	if eta < zeroEps {
		eta = zeroEps
	}
	a := grad[i] - grad[j]

	dhi := math.Min(C-beta[i], beta[j]+C)
	if dhi <= 0 {
		return 0
	}

	bi, bj := beta[i], beta[j]
	phi := func(d float64) float64 {
		return a*d + 0.5*eta*d*d +
			eps*(math.Abs(bi+d)-math.Abs(bi)) +
			eps*(math.Abs(bj-d)-math.Abs(bj))
	}

	candidates := []float64{
		dhi,
		(-a) / eta,
		(-a - 2*eps) / eta,
		(-a + 2*eps) / eta,
		-bi,
		bj,
	}

	best, bestVal := 0.0, 0.0
	for _, d := range candidates {
		if d < 0 {
			d = 0
		}
		if d > dhi {
			d = dhi
		}
		if v := phi(d); v < bestVal {
			bestVal = v
			best = d
		}
	}
	return best
}

// computeIntercept はKKT条件からバイアス項を復元する
//
// 自由なサポートベクトル（0 < |beta_k| < C）では誤差がちょうど
// epsilonチューブの縁に乗るため b が一意に決まる。存在しない場合は
// KKT不等式が許す区間の中点を取る（libsvmと同じ流儀）。
func computeIntercept(beta, grad []float64, C, eps float64) float64 {
	var sum float64
	var nFree int
	lo, hi := math.Inf(-1), math.Inf(1)

	for k := range beta {
		e := -grad[k] // e = y_k - (K beta)_k
		b := beta[k]
		switch {
		case b >= C-C*boundEps:
			if v := e - eps; v < hi {
				hi = v
			}
		case b <= -C+C*boundEps:
			if v := e + eps; v > lo {
				lo = v
			}
		case math.Abs(b) <= zeroEps:
			if v := e - eps; v > lo {
				lo = v
			}
			if v := e + eps; v < hi {
				hi = v
			}
		default:
			if b > 0 {
				sum += e - eps
			} else {
				sum += e + eps
			}
			nFree++
		}
	}

	if nFree > 0 {
		return sum / float64(nFree)
	}

	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return 0
	case math.IsInf(lo, -1):
		return hi
	case math.IsInf(hi, 1):
		return lo
	default:
		return (lo + hi) / 2
	}
}

// extractSupport はbetaが非ゼロの行だけを予測用に保持する
func (s *SVR) extractSupport(rows [][]float64, beta []float64) {
	s.supportX = s.supportX[:0]
	s.dualCoef = s.dualCoef[:0]
	for k, b := range beta {
		if math.Abs(b) > zeroEps {
			s.supportX = append(s.supportX, rows[k])
			s.dualCoef = append(s.dualCoef, b)
		}
	}
}

// Predict は各行に対する予測値を n×1 行列で返す
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := s.EnsureFitted("SVR", "Predict"); err != nil {
		return nil, err
	}

	n, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("SVR.Predict", s.nFeatures, c, 1)
	}

	rows := matrixRows(X)
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		sum := s.intercept
		for sv, svRow := range s.supportX {
			sum += s.dualCoef[sv] * rbf(svRow, rows[i], s.gamma)
		}
		out.Set(i, 0, sum)
	}
	return out, nil
}

// PredictVec はPredictの結果をベクトルとして返す（評価指標計算用）
func (s *SVR) PredictVec(X mat.Matrix) (*mat.VecDense, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return nil, err
	}
	n, _ := pred.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, pred.At(i, 0))
	}
	return v, nil
}

// NSupport は学習で得られたサポートベクトル数を返す
func (s *SVR) NSupport() int {
	return len(s.supportX)
}

// Iterations は直近のFitで消費した反復回数を返す
func (s *SVR) Iterations() int {
	return s.iterations
}

// ResolvedGamma は直近のFitで使用した具体的なカーネル幅を返す
func (s *SVR) ResolvedGamma() float64 {
	return s.gamma
}

// GetParams はモデルのハイパーパラメータを取得する
func (s *SVR) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel":  "rbf",
		"C":       s.C,
		"epsilon": s.Epsilon,
		"gamma":   s.Gamma.String(),
	}
}
