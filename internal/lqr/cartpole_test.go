package lqr_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lqrgain/internal/lqr"
	"github.com/san-kum/lqrgain/internal/model"
)

func cartPoleProblem(cp *model.CartPole, w model.Weights) lqr.Problem {
	a, b, err := cp.Linearize()
	Expect(err).NotTo(HaveOccurred())
	q, r, err := w.Matrices(cp.StateDim(), cp.ControlDim())
	Expect(err).NotTo(HaveOccurred())
	return lqr.Problem{A: a, B: b, Q: q, R: r}
}

var _ = Describe("cart-pole LQR design", func() {
	var (
		prob lqr.Problem
		res  *lqr.Result
	)

	BeforeEach(func() {
		prob = cartPoleProblem(model.NewCartPole(), model.DefaultWeights())
		var err error
		res, err = lqr.Solve(prob, lqr.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	It("satisfies the Riccati equation", func() {
		residual, err := lqr.Residual(prob.A, prob.B, prob.Q, prob.R, res.P)
		Expect(err).NotTo(HaveOccurred())
		scale := math.Max(1, mat.Norm(res.P, 2))
		Expect(residual / scale).To(BeNumerically("<", 1e-6))
		Expect(res.Residual).To(BeNumerically("~", residual, 1e-12))
	})

	It("returns a symmetric positive semi-definite P", func() {
		Expect(lqr.Asymmetry(res.P)).To(BeNumerically("<", 1e-9))

		sym := mat.NewSymDense(4, nil)
		for i := 0; i < 4; i++ {
			for j := i; j < 4; j++ {
				sym.SetSym(i, j, res.P.At(i, j))
			}
		}
		var es mat.EigenSym
		Expect(es.Factorize(sym, false)).To(BeTrue())
		for _, v := range es.Values(nil) {
			Expect(v).To(BeNumerically(">=", -1e-9))
		}
	})

	It("stabilizes the closed loop", func() {
		vals, err := lqr.Eigenvalues(lqr.ClosedLoop(prob.A, prob.B, res.K))
		Expect(err).NotTo(HaveOccurred())
		Expect(vals).To(HaveLen(4))
		for _, v := range vals {
			Expect(real(v)).To(BeNumerically("<", 0))
		}
		Expect(res.Stable()).To(BeTrue())
		Expect(res.Margin()).To(BeNumerically(">", 0))
	})

	It("produces a finite gain row of length four", func() {
		k := res.GainRow(0)
		Expect(k).To(HaveLen(4))
		for _, v := range k {
			Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse())
		}
	})

	It("matches K = R⁻¹BᵗP", func() {
		var btp, want mat.Dense
		btp.Mul(prob.B.T(), res.P)
		want.Scale(1/prob.R.At(0, 0), &btp)
		Expect(mat.EqualApprox(res.K, &want, 1e-12)).To(BeTrue())
	})

	It("weights cart position by √(Q₀₀/R)", func() {
		// the first column of A is zero, so the (0,0) entry of the CARE pins K₀
		Expect(math.Abs(res.GainRow(0)[0])).To(BeNumerically("~", 10, 1e-6))
	})

	It("agrees with Newton-Kleinman refinement", func() {
		opts := lqr.DefaultOptions()
		opts.Method = lqr.MethodNewton
		refined, err := lqr.Solve(prob, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(mat.EqualApprox(refined.K, res.K, 1e-6)).To(BeTrue())
	})

	Context("when the input weight grows", func() {
		It("lowers the gain", func() {
			rs := []float64{0.1, 1, 10, 100}
			prevK0 := math.Inf(1)
			prevKB := math.Inf(1)
			for _, r := range rs {
				w := model.DefaultWeights()
				w.R = []float64{r}
				sweep, err := lqr.Solve(cartPoleProblem(model.NewCartPole(), w), lqr.DefaultOptions())
				Expect(err).NotTo(HaveOccurred())

				k := sweep.GainRow(0)
				k0 := math.Abs(k[0])
				Expect(k0).To(BeNumerically("~", math.Sqrt(100/r), 1e-6*math.Sqrt(100/r)))
				Expect(k0).To(BeNumerically("<", prevK0))

				var kb mat.Dense
				kb.Mul(sweep.K, prob.B)
				Expect(kb.At(0, 0)).To(BeNumerically("<=", prevKB+1e-9))

				prevK0, prevKB = k0, kb.At(0, 0)
				Expect(sweep.Stable()).To(BeTrue())
			}
		})
	})

	Context("with badly scaled weights", func() {
		DescribeTable("still pins K₀ and the residual",
			func(q00, r float64) {
				w := model.DefaultWeights()
				w.Q[0] = q00
				w.R = []float64{r}
				scaled := cartPoleProblem(model.NewCartPole(), w)

				sol, err := lqr.Solve(scaled, lqr.DefaultOptions())
				Expect(err).NotTo(HaveOccurred())
				Expect(sol.Stable()).To(BeTrue())

				want := math.Sqrt(q00 / r)
				Expect(math.Abs(sol.GainRow(0)[0])).To(BeNumerically("~", want, 1e-6*want))

				rel, err := lqr.RelativeResidual(scaled.A, scaled.B, scaled.Q, scaled.R, sol.P)
				Expect(err).NotTo(HaveOccurred())
				Expect(rel).To(BeNumerically("<=", 1e-8))
				Expect(sol.RelResidual).To(BeNumerically("~", rel, 1e-15))
			},
			Entry("R = 1e-8", 100.0, 1e-8),
			Entry("R = 1e10", 100.0, 1e10),
			Entry("R = 1e14", 100.0, 1e14),
			Entry("Q₀₀ = 1e6", 1e6, 1.0),
			Entry("Q₀₀ = 1e10", 1e10, 1.0),
		)
	})

	Context("without any state cost", func() {
		It("reports that no stabilizing solution exists", func() {
			w := model.DefaultWeights()
			w.Q = []float64{0, 0, 0, 0}
			_, err := lqr.Solve(cartPoleProblem(model.NewCartPole(), w), lqr.DefaultOptions())
			Expect(err).To(MatchError(lqr.ErrNoStabilizingSolution))
			Expect(err.Error()).To(ContainSubstring("not stabilizable or not detectable"))
		})
	})

	Context("with degenerate physical constants", func() {
		DescribeTable("refuses to linearize",
			func(mutate func(*model.CartPole)) {
				cp := model.NewCartPole()
				mutate(cp)
				a, b, err := cp.Linearize()
				Expect(err).To(MatchError(model.ErrParameterBounds))
				Expect(a).To(BeNil())
				Expect(b).To(BeNil())
			},
			Entry("zero cart mass", func(cp *model.CartPole) { cp.CartMass = 0 }),
			Entry("zero length", func(cp *model.CartPole) { cp.Length = 0 }),
		)
	})
})
