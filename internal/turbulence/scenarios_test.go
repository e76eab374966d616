package turbulence_test

import (
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/mesh"
	"github.com/san-kum/nutilda/internal/turbulence"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const nu = 1e-5

func channel(ny int, u func(field.Vec3) field.Vec3) turbulence.Inputs {
	m, err := mesh.NewBox(mesh.BoxSpec{
		NX: 2, NY: ny, NZ: 1,
		Length: field.Vec3{1, 2, 0.5},
		Walls:  []string{mesh.YMin, mesh.YMax},
	})
	Expect(err).NotTo(HaveOccurred())

	U := field.New[field.Vec3]("U", field.DimVelocity, m.Shape())
	for c, x := range m.Centres {
		U.Internal[c] = u(x)
	}
	for p, patch := range m.Patches {
		U.Boundary[p].Kind = field.FixedValue
		for i, f := range patch.Faces {
			U.Boundary[p].Values[i] = u(f.Centre)
		}
	}
	return turbulence.Inputs{
		Mesh:        m,
		U:           U,
		AlphaRhoPhi: fvm.FluxOf(m, U),
		Nu:          field.Uniform("nu", field.DimKinematicViscosity, m.Shape(), nu),
		Dt:          1,
		TimeIndex:   1,
	}
}

func uniformNuTilda(m *mesh.Mesh, v float64, wallsFixed bool) *field.Scalar {
	f := field.Uniform("nuTilda", field.DimKinematicViscosity, m.Shape(), v)
	kinds := make([]field.PatchKind, len(m.Patches))
	for i := range kinds {
		kinds[i] = field.ZeroGradient
	}
	f.SetKinds(kinds)
	if wallsFixed {
		Expect(f.SetPatch(mesh.YMin, field.FixedValue, 0)).To(Succeed())
		Expect(f.SetPatch(mesh.YMax, field.FixedValue, 0)).To(Succeed())
	}
	return f
}

func quiet() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

var _ = Describe("Model", func() {
	Context("free-stream decay without velocity gradient", func() {
		var (
			in    turbulence.Inputs
			model *turbulence.Model
		)

		BeforeEach(func() {
			in = channel(10, func(field.Vec3) field.Vec3 { return field.Vec3{} })
			var err error
			model, err = turbulence.New(turbulence.DefaultCoeffs(), uniformNuTilda(in.Mesh, 3*nu, false),
				turbulence.WithSolver(fvm.NewDirect()), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())
		})

		It("clips Stilda to its floor", func() {
			aux, err := model.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())
			for i, s := range aux.Stilda.Internal {
				Expect(aux.Omega.Internal[i]).To(BeZero())
				Expect(s).To(Equal(model.Coeffs().Cs * aux.Omega.Internal[i]))
			}
		})

		It("decays monotonically and fastest near the walls", func() {
			prevMax, prevMean := 3*nu, 3*nu
			for step := 1; step <= 5; step++ {
				in.TimeIndex = step
				_, err := model.Correct(in)
				Expect(err).NotTo(HaveOccurred())

				nuTilda := model.NuTilda()
				lo, hi := field.MinMax(nuTilda)
				Expect(lo).To(BeNumerically(">=", 0))
				Expect(hi).To(BeNumerically("<", prevMax))
				Expect(mean(nuTilda.Internal)).To(BeNumerically("<", prevMean))
				prevMax, prevMean = hi, mean(nuTilda.Internal)
			}

			nuTilda := model.NuTilda()
			// cells 0 and 8 sit next to the lower wall and on the centreline
			Expect(nuTilda.Internal[0]).To(BeNumerically("<", nuTilda.Internal[8]))
		})
	})

	Context("with the ft2 trip term toggled", func() {
		It("scales production by exactly (1 - ft2) and nothing else", func() {
			in := channel(8, func(x field.Vec3) field.Vec3 { return field.Vec3{5 * x[1], 0, 0} })
			off := turbulence.DefaultCoeffs()
			on := off
			on.Ft2 = true

			mOff, err := turbulence.New(off, uniformNuTilda(in.Mesh, 3*nu, true), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())
			mOn, err := turbulence.New(on, uniformNuTilda(in.Mesh, 3*nu, true), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())

			a, err := mOff.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())
			b, err := mOn.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())

			for i, p := range a.Production.Internal {
				Expect(b.Production.Internal[i]).To(Equal(p * (1 - b.Ft2.Internal[i])))
			}
			Expect(b.Ft2.Internal[0]).To(BeNumerically(">", 0))
			Expect(a.Ft2.Internal).To(HaveEach(BeZero()))

			Expect(b.Chi).To(Equal(a.Chi))
			Expect(b.Fv1).To(Equal(a.Fv1))
			Expect(b.Fv2).To(Equal(a.Fv2))
			Expect(b.Omega).To(Equal(a.Omega))
			Expect(b.H).To(Equal(a.H))
			Expect(b.Stilda).To(Equal(a.Stilda))
			Expect(b.DTilda).To(Equal(a.DTilda))
			Expect(b.R).To(Equal(a.R))
			Expect(b.Fw).To(Equal(a.Fw))
			Expect(b.Destruction).To(Equal(a.Destruction))
		})
	})

	Context("with the length scale switched to the hybrid variant", func() {
		It("changes dTilda and Stilda but not chi, fv1 or fv2", func() {
			in := channel(10, func(x field.Vec3) field.Vec3 { return field.Vec3{5 * x[1], 0, 0} })
			hybrid, err := turbulence.NewHybrid(0.65, 0.41, turbulence.MinPolicy)
			Expect(err).NotTo(HaveOccurred())

			ras, err := turbulence.New(turbulence.DefaultCoeffs(), uniformNuTilda(in.Mesh, 3*nu, true), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())
			des, err := turbulence.New(turbulence.DefaultCoeffs(), uniformNuTilda(in.Mesh, 3*nu, true),
				turbulence.WithLengthScale(hybrid), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())

			a, err := ras.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())
			b, err := des.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Chi).To(Equal(a.Chi))
			Expect(b.Fv1).To(Equal(a.Fv1))
			Expect(b.Fv2).To(Equal(a.Fv2))
			Expect(b.DTilda).NotTo(Equal(a.DTilda))
			Expect(b.Stilda).NotTo(Equal(a.Stilda))

			_, err = ras.Correct(in)
			Expect(err).NotTo(HaveOccurred())
			_, err = des.Correct(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(des.NuTilda().Internal).NotTo(Equal(ras.NuTilda().Internal))
		})
	})

	Context("with helical flow", func() {
		It("raises production where velocity and vorticity align", func() {
			in := channel(8, func(x field.Vec3) field.Vec3 { return field.Vec3{5 * x[1], 0, 1} })
			withH := turbulence.DefaultCoeffs()
			without := withH
			without.Helicity = false

			mH, err := turbulence.New(withH, uniformNuTilda(in.Mesh, 3*nu, true), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())
			m0, err := turbulence.New(without, uniformNuTilda(in.Mesh, 3*nu, true), turbulence.WithLogger(quiet()))
			Expect(err).NotTo(HaveOccurred())

			a, err := mH.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())
			b, err := m0.Auxiliary(in)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.H.Internal).To(HaveEach(Equal(1.0)))
			Expect(mean(a.H.Internal)).To(BeNumerically(">", 1))
			for i := range a.Production.Internal {
				Expect(a.Production.Internal[i]).To(BeNumerically(">=", b.Production.Internal[i]))
			}
			Expect(mean(a.Production.Internal)).To(BeNumerically(">", mean(b.Production.Internal)))
		})
	})
})
