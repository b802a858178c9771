package registry

import (
	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/validation"
)

type descriptorInput struct {
	Name         string `json:"name" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Capabilities []Mode `json:"capabilities" validate:"required,min=1,dive,mode"`
}

// Validate builds a Descriptor from a metadata bag and a handle. It never
// touches registry state. A missing name, title or capability set, or a nil
// handle, is reported as a validation error carrying the identity.
func Validate(id Identity, meta Metadata, handle Printer) (*Descriptor, error) {
	fields := descriptorInput{
		Name:         meta.Text(KeyName),
		Title:        meta.Text(KeyTitle),
		Capabilities: parseModes(meta[KeyFormat]),
	}
	if err := validation.Validate(fields); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("identity", id)
		}
		return nil, err
	}
	if handle == nil {
		return nil, errors.MissingField("handle").WithDetail("identity", id)
	}

	return &Descriptor{
		Identity:     id,
		Name:         fields.Name,
		Title:        fields.Title,
		Rank:         parseRank(meta[KeyRanking]),
		Capabilities: fields.Capabilities,
		Handle:       handle,
	}, nil
}

// checkDescriptor rejects a descriptor that did not come through Validate
// and lacks a required field.
func checkDescriptor(d *Descriptor) error {
	switch {
	case d == nil:
		return errors.MissingField("descriptor")
	case d.Name == "":
		return errors.MissingField("name").WithDetail("identity", d.Identity)
	case d.Title == "":
		return errors.MissingField("title").WithDetail("identity", d.Identity)
	case len(d.Capabilities) == 0:
		return errors.MissingField("capabilities").WithDetail("identity", d.Identity)
	case d.Handle == nil:
		return errors.MissingField("handle").WithDetail("identity", d.Identity)
	}
	return nil
}
