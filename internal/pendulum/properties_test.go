package pendulum_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpsim/internal/pendulum"
)

const deg = math.Pi / 180

var _ = Describe("Pendulum", func() {
	var params pendulum.Params

	BeforeEach(func() {
		params = pendulum.NewParams(100, 80, 5, 5)
	})

	Describe("construction", func() {
		It("accepts any gravity, including zero", func() {
			_, err := pendulum.New(0.1, 0.2, params.WithGravity(0))
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts at rest with equation-derived accelerations", func() {
			pd, err := pendulum.New(15*deg, 45*deg, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(pd.Omega1()).To(BeZero())
			Expect(pd.Omega2()).To(BeZero())
			Expect(pd.Alpha1()).To(BeNumerically("~", 0.00757874763926024, 1e-12))
			Expect(pd.Alpha2()).To(BeNumerically("~", -0.09659258262890683, 1e-12))
		})

		It("computes the initial display coordinates", func() {
			pd, _ := pendulum.New(15*deg, 45*deg, params)
			x1, y1, x2, y2 := pd.Positions()
			Expect(x1).To(BeNumerically("~", 25.881904510252074, 1e-9))
			Expect(y1).To(BeNumerically("~", 83.40741737109317, 1e-9))
			Expect(x2).To(BeNumerically("~", 82.45044700517587, 1e-9))
			Expect(y2).To(BeNumerically("~", 26.83887487616937, 1e-9))
		})
	})

	Describe("Advance", func() {
		It("matches the golden output for one 0.01 step", func() {
			pd, err := pendulum.New(15*deg, 45*deg, params)
			Expect(err).NotTo(HaveOccurred())

			pd.Advance(0.01)

			x1, y1, x2, y2 := pd.Positions()
			Expect(x1).To(BeNumerically("~", 25.882014317856488, 1e-9))
			Expect(y1).To(BeNumerically("~", 83.407446794019, 1e-9))
			Expect(x2).To(BeNumerically("~", 82.44973719160039, 1e-9))
			Expect(y2).To(BeNumerically("~", 26.838084689790605, 1e-9))
			Expect(pd.Theta1()).To(BeNumerically("~", 0.2618005246112953, 1e-9))
			Expect(pd.Theta2()).To(BeNumerically("~", 0.785383674510054, 1e-9))
			Expect(pd.Omega1()).To(BeNumerically("~", 7.57874763926024e-05, 1e-9))
			Expect(pd.Omega2()).To(BeNumerically("~", -0.0009659258262890683, 1e-9))
			Expect(pd.Alpha1()).To(BeNumerically("~", 0.00757868667373122, 1e-9))
			Expect(pd.Alpha2()).To(BeNumerically("~", -0.09659131357635742, 1e-9))
		})

		It("keeps the rest state as an exact fixed point", func() {
			pd, _ := pendulum.New(0, 0, params)
			for i := 0; i < 10000; i++ {
				pd.Advance(0.016)
			}
			Expect(pd.Theta1()).To(BeZero())
			Expect(pd.Theta2()).To(BeZero())
			Expect(pd.Omega1()).To(BeZero())
			Expect(pd.Omega2()).To(BeZero())
			Expect(pd.Alpha1()).To(BeZero())
			Expect(pd.Alpha2()).To(BeZero())
		})

		It("treats a zero step as a no-op for angles, velocities and positions", func() {
			pd, _ := pendulum.New(1.2, 2.2, params, pendulum.WithVelocities(0.1, 0.4))
			pd.Advance(0.01)
			before := pd.Snapshot()

			pd.Advance(0)

			after := pd.Snapshot()
			Expect(after.Theta1).To(Equal(before.Theta1))
			Expect(after.Theta2).To(Equal(before.Theta2))
			Expect(after.Omega1).To(Equal(before.Omega1))
			Expect(after.Omega2).To(Equal(before.Omega2))
			Expect(after.X1).To(Equal(before.X1))
			Expect(after.Y1).To(Equal(before.Y1))
			Expect(after.X2).To(Equal(before.X2))
			Expect(after.Y2).To(Equal(before.Y2))
		})

		DescribeTable("keeps angles in [0, 2π)",
			func(theta1, theta2, omega1, omega2 float64) {
				pd, err := pendulum.New(theta1, theta2, pendulum.NewParams(1, 1, 1, 1),
					pendulum.WithVelocities(omega1, omega2))
				Expect(err).NotTo(HaveOccurred())
				for i := 0; i < 2000; i++ {
					pd.Advance(0.01)
					Expect(pd.Theta1()).To(And(BeNumerically(">=", 0), BeNumerically("<", 2*math.Pi)))
					Expect(pd.Theta2()).To(And(BeNumerically(">=", 0), BeNumerically("<", 2*math.Pi)))
				}
			},
			Entry("from negative angles", -1.0, -2.0, 0.0, 0.0),
			Entry("from large angles", 40.0, -55.0, 0.0, 0.0),
			Entry("spinning", 0.0, 0.0, 5.0, -5.0),
		)

		It("keeps positions consistent with the angles", func() {
			pd, _ := pendulum.New(150*deg, 170*deg, params)
			h := params.Length1 + params.Length2
			for i := 0; i < 1000; i++ {
				pd.Advance(0.05)
				x1, y1, x2, y2 := pd.Positions()
				Expect(x1).To(BeNumerically("~", params.Length1*math.Sin(pd.Theta1()), 1e-9))
				Expect(y1).To(BeNumerically("~", h-params.Length1*math.Cos(pd.Theta1()), 1e-9))
				Expect(x2).To(BeNumerically("~", x1+params.Length2*math.Sin(pd.Theta2()), 1e-9))
				Expect(y2).To(BeNumerically("~", h-(params.Length1*math.Cos(pd.Theta1())+params.Length2*math.Cos(pd.Theta2())), 1e-9))
			}
		})

		It("replays identically from identical inputs", func() {
			run := func() []pendulum.Snapshot {
				pd, _ := pendulum.New(170*deg, 175*deg, params)
				out := make([]pendulum.Snapshot, 0, 3000)
				for i := 0; i < 3000; i++ {
					pd.Advance(0.01 + float64(i%7)*0.001)
					out = append(out, pd.Snapshot())
				}
				return out
			}
			Expect(run()).To(Equal(run()))
		})

		It("propagates non-finite values from a singular configuration", func() {
			pd, err := pendulum.New(0.3, 0.3, pendulum.NewParams(1, 1, 1, 1e20))
			Expect(err).NotTo(HaveOccurred())

			nonFinite := Satisfy(func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) })
			Expect(pd.Alpha1()).To(nonFinite)
			Expect(pd.Alpha2()).To(nonFinite)
			Expect(pd.Snapshot().IsFinite()).To(BeFalse())

			Expect(func() {
				for i := 0; i < 100; i++ {
					pd.Advance(0.01)
				}
			}).NotTo(Panic())
			Expect(pd.Snapshot().IsFinite()).To(BeFalse())
		})
	})

	Describe("independent instances", func() {
		It("can be advanced in parallel without coordination", func() {
			const n = 8
			pds := make([]*pendulum.Pendulum, n)
			for i := range pds {
				pds[i], _ = pendulum.New(1.0+0.1*float64(i), 2.0, params)
			}

			var wg sync.WaitGroup
			for _, pd := range pds {
				wg.Add(1)
				go func(pd *pendulum.Pendulum) {
					defer wg.Done()
					for i := 0; i < 1000; i++ {
						pd.Advance(0.01)
					}
				}(pd)
			}
			wg.Wait()

			for i, pd := range pds {
				ref, _ := pendulum.New(1.0+0.1*float64(i), 2.0, params)
				for j := 0; j < 1000; j++ {
					ref.Advance(0.01)
				}
				Expect(pd.Snapshot()).To(Equal(ref.Snapshot()))
			}
		})
	})
})
