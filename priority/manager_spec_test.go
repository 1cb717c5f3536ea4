package priority

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingOwner counts writes so specs can assert that failed edits never write.
type recordingOwner struct {
	SliceOwner
	writes int
}

func (o *recordingOwner) Write(list []string) {
	o.writes++
	o.SliceOwner.Write(list)
}

var _ = Describe("Manager", func() {
	Describe("construction", func() {
		It("binds to an empty owner without writing", func() {
			owner := &recordingOwner{}
			m := New(owner)
			Expect(m.Priority()).To(BeEmpty())
			Expect(owner.writes).To(BeZero())
		})

		It("keeps the owner's existing list", func() {
			m := New(NewSliceOwner("a", "b"))
			Expect(m.Priority()).To(Equal([]string{"a", "b"}))
		})

		It("seeds the built-in defaults when none are given", func() {
			m := WithDefaults(&SliceOwner{}, nil)
			Expect(m.Priority()).To(Equal(Defaults()))
		})

		It("seeds user-defined defaults, replacing what the owner held", func() {
			m := WithDefaults(NewSliceOwner("stale"), []string{"first", "second", "third"})
			Expect(m.Priority()).To(Equal([]string{"first", "second", "third"}))
		})

		It("treats an explicit empty slice as an empty list", func() {
			m := WithDefaults(NewSliceOwner("stale"), []string{})
			Expect(m.Priority()).To(BeEmpty())
		})

		It("seeds from a custom registry", func() {
			m := WithDefaultsFrom(&SliceOwner{}, func() []string { return []string{"x", "y"} })
			Expect(m.Priority()).To(Equal([]string{"x", "y"}))
		})

		It("falls back to Defaults for a nil registry", func() {
			m := WithDefaultsFrom(&SliceOwner{}, nil)
			Expect(m.Priority()).To(Equal(Defaults()))
		})
	})

	It("builds the documented order one edit at a time", func() {
		m := WithDefaults(&SliceOwner{}, []string{})
		m.Append("First")
		Expect(m.Priority()).To(Equal([]string{"First"}))
		Expect(m.Before("First", "Third")).To(Succeed())
		Expect(m.Priority()).To(Equal([]string{"Third", "First"}))
		Expect(m.Before("Third", "Second")).To(Succeed())
		Expect(m.Priority()).To(Equal([]string{"Second", "Third", "First"}))
	})

	It("re-reads the owner before every edit", func() {
		owner := NewSliceOwner("a")
		m := New(owner)
		owner.Write([]string{"b"})
		m.Append("c")
		Expect(m.Priority()).To(Equal([]string{"b", "c"}))
	})

	It("does not alias the caller's slices", func() {
		ids := []string{"x", "y"}
		m := WithDefaults(&SliceOwner{}, ids)
		ids[0] = "mutated"
		got := m.Priority()
		got[1] = "mutated"
		Expect(m.Priority()).To(Equal([]string{"x", "y"}))
	})

	DescribeTable("Prepend",
		func(initial []string, ids []string, expected []string) {
			m := WithDefaults(&SliceOwner{}, initial)
			m.Prepend(ids...)
			Expect(m.Priority()).To(Equal(expected))
		},
		Entry("into an empty list", []string{}, []string{"first"}, []string{"first"}),
		Entry("a single id", []string{"first"}, []string{"second"}, []string{"second", "first"}),
		Entry("several ids in order", []string{"first", "second"}, []string{"third", "fourth"},
			[]string{"third", "fourth", "first", "second"}),
	)

	DescribeTable("Append",
		func(initial []string, ids []string, expected []string) {
			m := WithDefaults(&SliceOwner{}, initial)
			m.Append(ids...)
			Expect(m.Priority()).To(Equal(expected))
		},
		Entry("into an empty list", []string{}, []string{"first"}, []string{"first"}),
		Entry("a single id", []string{"first"}, []string{"second"}, []string{"first", "second"}),
		Entry("several ids in order", []string{"first", "second"}, []string{"third", "fourth"},
			[]string{"first", "second", "third", "fourth"}),
	)

	DescribeTable("Before",
		func(initial []string, anchor string, ids []string, expected []string) {
			m := WithDefaults(&SliceOwner{}, initial)
			Expect(m.Before(anchor, ids...)).To(Succeed())
			Expect(m.Priority()).To(Equal(expected))
		},
		Entry("a single id", []string{"first", "second"}, "second", []string{"third"},
			[]string{"first", "third", "second"}),
		Entry("several ids", []string{"first", "second", "third"}, "second", []string{"fourth", "fifth"},
			[]string{"first", "fourth", "fifth", "second", "third"}),
		Entry("the head", []string{"first"}, "first", []string{"zero"}, []string{"zero", "first"}),
	)

	DescribeTable("After",
		func(initial []string, anchor string, ids []string, expected []string) {
			m := WithDefaults(&SliceOwner{}, initial)
			Expect(m.After(anchor, ids...)).To(Succeed())
			Expect(m.Priority()).To(Equal(expected))
		},
		Entry("a single id", []string{"first", "second"}, "first", []string{"third"},
			[]string{"first", "third", "second"}),
		Entry("several ids", []string{"first", "second", "third"}, "second", []string{"fourth", "fifth"},
			[]string{"first", "second", "fourth", "fifth", "third"}),
		Entry("the tail", []string{"first"}, "first", []string{"last"}, []string{"first", "last"}),
	)

	DescribeTable("Swap",
		func(what, with string, expected []string) {
			m := WithDefaults(&SliceOwner{}, []string{"first", "second", "third"})
			Expect(m.Swap(what, with)).To(Succeed())
			Expect(m.Priority()).To(Equal(expected))
		},
		Entry("neighbours", "first", "second", []string{"second", "first", "third"}),
		Entry("ends", "first", "third", []string{"third", "second", "first"}),
		Entry("in reverse argument order", "third", "first", []string{"third", "second", "first"}),
		Entry("an id with itself", "second", "second", []string{"first", "second", "third"}),
	)

	DescribeTable("Remove",
		func(ids []string, expected []string) {
			m := WithDefaults(&SliceOwner{}, []string{"first", "second", "third"})
			Expect(m.Remove(ids...)).To(Succeed())
			Expect(m.Priority()).To(Equal(expected))
		},
		Entry("the head", []string{"first"}, []string{"second", "third"}),
		Entry("the middle", []string{"second"}, []string{"first", "third"}),
		Entry("the tail", []string{"third"}, []string{"first", "second"}),
		Entry("both ends", []string{"first", "third"}, []string{"second"}),
		Entry("everything, adjacent", []string{"first", "second", "third"}, []string{}),
		Entry("everything, out of order", []string{"third", "first", "second"}, []string{}),
	)

	Describe("missing identifiers", func() {
		var (
			owner *recordingOwner
			m     *Manager
		)

		BeforeEach(func() {
			owner = &recordingOwner{}
			owner.SliceOwner.Write([]string{"first", "second"})
			m = New(owner)
		})

		AfterEach(func() {
			Expect(m.Priority()).To(Equal([]string{"first", "second"}))
			Expect(owner.writes).To(BeZero())
		})

		It("fails Before with a missing anchor", func() {
			err := m.Before("missing", "third")
			var nf *NotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.ID).To(Equal("missing"))
			Expect(nf.Op).To(Equal("before"))
		})

		It("fails After with a missing anchor", func() {
			Expect(m.After("missing", "third")).To(MatchError(ErrNotFound))
		})

		It("fails Before with a missing anchor even with nothing to insert", func() {
			Expect(m.Before("missing")).To(MatchError(ErrNotFound))
		})

		It("fails Swap when the first operand is missing", func() {
			Expect(m.Swap("missing", "second")).To(MatchError(ErrNotFound))
		})

		It("fails Swap when the second operand is missing", func() {
			Expect(m.Swap("first", "missing")).To(MatchError(ErrNotFound))
		})

		It("fails Remove without removing the ids that were found", func() {
			err := m.Remove("first", "missing")
			Expect(err).To(MatchError(ErrNotFound))
			Expect(err.Error()).To(ContainSubstring(`"missing"`))
		})

		It("fails Remove when an id is requested twice but present once", func() {
			Expect(m.Remove("first", "first")).To(MatchError(ErrNotFound))
		})

		It("fails Index", func() {
			_, err := m.Index("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	It("treats empty id lists as no-ops", func() {
		owner := &recordingOwner{}
		owner.SliceOwner.Write([]string{"a"})
		m := New(owner)
		m.Prepend().Append()
		Expect(m.Remove()).To(Succeed())
		Expect(m.After("a")).To(Succeed())
		Expect(m.Priority()).To(Equal([]string{"a"}))
		Expect(owner.writes).To(BeZero())
	})
})
