package catalog

import (
	"errors"
	"time"

	"github.com/filemart-io/filemart/internal/shared/id"
)

// EligibilityClass describes which download path a file may be obtained
// through.
type EligibilityClass string

const (
	// EligibilityFree files are downloadable by any authenticated user.
	EligibilityFree EligibilityClass = "free"
	// EligibilityFeatured files are promoted free downloads.
	EligibilityFeatured EligibilityClass = "featured"
	// EligibilityPaid files require a completed order.
	EligibilityPaid EligibilityClass = "paid"
	// EligibilitySubscription files are gated behind an active subscription.
	EligibilitySubscription EligibilityClass = "subscription"
)

// ValidEligibilityClasses is the set of accepted eligibility classes.
var ValidEligibilityClasses = map[EligibilityClass]bool{
	EligibilityFree:         true,
	EligibilityFeatured:     true,
	EligibilityPaid:         true,
	EligibilitySubscription: true,
}

// IsGated reports whether the class requires a subscription entitlement.
func (e EligibilityClass) IsGated() bool {
	return e == EligibilitySubscription
}

// IsFree reports whether the class bypasses quota and device checks.
func (e EligibilityClass) IsFree() bool {
	return e == EligibilityFree || e == EligibilityFeatured
}

// File represents a downloadable catalog item. The entitlement engine only
// reads files; catalog CRUD lives elsewhere.
type File struct {
	id            uint
	sid           string
	title         string
	byteSize      uint64
	reference     string
	eligibility   EligibilityClass
	active        bool
	downloadCount uint64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewFile creates a new catalog file.
func NewFile(title string, byteSize uint64, reference string, eligibility EligibilityClass) (*File, error) {
	if title == "" {
		return nil, errors.New("file title cannot be empty")
	}
	if reference == "" {
		return nil, errors.New("file reference cannot be empty")
	}
	if !ValidEligibilityClasses[eligibility] {
		return nil, errors.New("invalid eligibility class")
	}

	now := time.Now().UTC()
	return &File{
		sid:         id.MustGenerateWithPrefix(id.PrefixFile, id.DefaultLength),
		title:       title,
		byteSize:    byteSize,
		reference:   reference,
		eligibility: eligibility,
		active:      true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// FileReconstructParams carries persisted state back into the domain.
type FileReconstructParams struct {
	ID            uint
	SID           string
	Title         string
	ByteSize      uint64
	Reference     string
	Eligibility   EligibilityClass
	Active        bool
	DownloadCount uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructFile rebuilds a File from persistence.
func ReconstructFile(p FileReconstructParams) (*File, error) {
	if p.ID == 0 {
		return nil, errors.New("file ID cannot be zero")
	}
	if !ValidEligibilityClasses[p.Eligibility] {
		return nil, errors.New("invalid eligibility class")
	}

	return &File{
		id:            p.ID,
		sid:           p.SID,
		title:         p.Title,
		byteSize:      p.ByteSize,
		reference:     p.Reference,
		eligibility:   p.Eligibility,
		active:        p.Active,
		downloadCount: p.DownloadCount,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

func (f *File) ID() uint                      { return f.id }
func (f *File) SID() string                   { return f.sid }
func (f *File) Title() string                 { return f.title }
func (f *File) ByteSize() uint64              { return f.byteSize }
func (f *File) Reference() string             { return f.reference }
func (f *File) Eligibility() EligibilityClass { return f.eligibility }
func (f *File) IsActive() bool                { return f.active }
func (f *File) DownloadCount() uint64         { return f.downloadCount }
func (f *File) CreatedAt() time.Time          { return f.createdAt }
func (f *File) UpdatedAt() time.Time          { return f.updatedAt }

// SetID sets the file ID (only for persistence layer use).
func (f *File) SetID(fileID uint) error {
	if f.id != 0 {
		return errors.New("file ID is already set")
	}
	if fileID == 0 {
		return errors.New("file ID cannot be zero")
	}
	f.id = fileID
	return nil
}

// Downloadable reports whether the file can be served at all. Inactive files
// are never eligible regardless of class.
func (f *File) Downloadable() bool {
	return f.active
}
