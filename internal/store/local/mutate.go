package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkival/trellis/internal/permission"
	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/version"
)

// The mutation surface of the embedded store, backing the version guard.
// Version state is derived, not stored: a value with a successor is
// Superseded, a value flagged isDeleted is Deleted, the rest are Active.

// Resource implements version.Backing.
func (s *Store) Resource(ctx context.Context, iri string) (version.ResourceInfo, error) {
	literal, err := s.objectLexical(ctx, iri, rdf.HasPermissions)
	if err != nil {
		return version.ResourceInfo{}, err
	}
	creator, err := s.objectValue(ctx, iri, rdf.AttachedToUser)
	if err != nil {
		return version.ResourceInfo{}, err
	}
	project, err := s.objectValue(ctx, iri, rdf.AttachedToProject)
	if err != nil {
		return version.ResourceInfo{}, err
	}

	info := version.ResourceInfo{
		Meta: permission.EntityMeta{IRI: iri, Creator: creator, Project: project},
	}
	if literal != "" {
		lit, err := permission.Parse(permission.ObjectAccess, literal)
		if err == nil {
			info.Permissions = lit
			return info, nil
		}
	}
	info.Permissions = permission.FallbackLiteral(permission.ObjectAccess)
	return info, nil
}

// Head implements version.Backing: it walks successor links forward from
// the given version to the lineage head.
func (s *Store) Head(ctx context.Context, valueIRI string) (version.Record, error) {
	current := valueIRI
	for {
		successor, err := s.subjectOf(ctx, rdf.PreviousValue, current)
		if err != nil {
			return version.Record{}, err
		}
		if successor == "" {
			break
		}
		current = successor
	}
	return s.loadRecord(ctx, current)
}

// AppendVersion implements version.Backing. The superseded state of the
// prior head is implied by the new head's predecessor link.
func (s *Store) AppendVersion(ctx context.Context, newHead version.Record, supersedes string) error {
	triples := []rdf.Triple{
		{Subject: newHead.IRI, Predicate: rdf.RdfType, Object: rdf.NewIRI(newHead.Type)},
		{Subject: newHead.Resource, Predicate: newHead.Property, Object: rdf.NewIRI(newHead.IRI)},
	}
	if newHead.Creator != "" {
		triples = append(triples, rdf.Triple{
			Subject: newHead.IRI, Predicate: rdf.AttachedToUser, Object: rdf.NewIRI(newHead.Creator),
		})
	}
	if newHead.Permissions != "" {
		triples = append(triples, rdf.Triple{
			Subject: newHead.IRI, Predicate: rdf.HasPermissions, Object: rdf.StringLiteral(newHead.Permissions),
		})
	}
	if supersedes != "" {
		triples = append(triples, rdf.Triple{
			Subject: newHead.IRI, Predicate: rdf.PreviousValue, Object: rdf.NewIRI(supersedes),
		})
	}
	return s.Insert(ctx, triples)
}

// MarkDeleted implements version.Backing.
func (s *Store) MarkDeleted(ctx context.Context, valueIRI, comment string) error {
	if err := s.replaceObject(ctx, valueIRI, rdf.IsDeleted, rdf.BoolLiteral(true)); err != nil {
		return err
	}
	if comment == "" {
		return nil
	}
	return s.replaceObject(ctx, valueIRI, rdf.DeleteComment, rdf.StringLiteral(comment))
}

// SetPermissions implements version.Backing.
func (s *Store) SetPermissions(ctx context.Context, valueIRI, literal string) error {
	return s.replaceObject(ctx, valueIRI, rdf.HasPermissions, rdf.StringLiteral(literal))
}

func (s *Store) loadRecord(ctx context.Context, iri string) (version.Record, error) {
	typ, err := s.objectValue(ctx, iri, rdf.RdfType)
	if err != nil {
		return version.Record{}, err
	}
	if typ == "" {
		return version.Record{}, fmt.Errorf("value <%s> not found", iri)
	}

	rec := version.Record{IRI: iri, Type: typ, State: version.Active}
	if rec.Previous, err = s.objectValue(ctx, iri, rdf.PreviousValue); err != nil {
		return version.Record{}, err
	}
	if rec.Creator, err = s.objectValue(ctx, iri, rdf.AttachedToUser); err != nil {
		return version.Record{}, err
	}
	if rec.Permissions, err = s.objectLexical(ctx, iri, rdf.HasPermissions); err != nil {
		return version.Record{}, err
	}
	if rec.DeleteComment, err = s.objectLexical(ctx, iri, rdf.DeleteComment); err != nil {
		return version.Record{}, err
	}

	// Resource and property come from the incoming property triple.
	row := s.db.QueryRowContext(ctx, `
		SELECT subject, predicate FROM triples
		WHERE object_kind = 'iri' AND object_value = ? AND predicate != ?
		ORDER BY id LIMIT 1
	`, iri, rdf.PreviousValue)
	if err := row.Scan(&rec.Resource, &rec.Property); err != nil && !isNoRows(err) {
		return version.Record{}, fmt.Errorf("load value <%s>: %w", iri, err)
	}

	deleted, err := s.objectLexical(ctx, iri, rdf.IsDeleted)
	if err != nil {
		return version.Record{}, err
	}
	if deleted == "true" {
		rec.State = version.Deleted
		return rec, nil
	}
	successor, err := s.subjectOf(ctx, rdf.PreviousValue, iri)
	if err != nil {
		return version.Record{}, err
	}
	if successor != "" {
		rec.State = version.Superseded
	}
	return rec, nil
}

func (s *Store) objectValue(ctx context.Context, subject, predicate string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		"SELECT object_value FROM triples WHERE subject = ? AND predicate = ? ORDER BY id DESC LIMIT 1",
		subject, predicate).Scan(&v)
	if isNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read <%s> %s: %w", subject, rdf.CompactIRI(predicate), err)
	}
	return v, nil
}

func (s *Store) objectLexical(ctx context.Context, subject, predicate string) (string, error) {
	return s.objectValue(ctx, subject, predicate)
}

func (s *Store) subjectOf(ctx context.Context, predicate, object string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		"SELECT subject FROM triples WHERE predicate = ? AND object_kind = 'iri' AND object_value = ? ORDER BY id LIMIT 1",
		predicate, object).Scan(&v)
	if isNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s of <%s>: %w", rdf.CompactIRI(predicate), object, err)
	}
	return v, nil
}

func (s *Store) replaceObject(ctx context.Context, subject, predicate string, object rdf.Term) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM triples WHERE subject = ? AND predicate = ?", subject, predicate); err != nil {
		return fmt.Errorf("replace %s on <%s>: %w", rdf.CompactIRI(predicate), subject, err)
	}
	return s.Insert(ctx, []rdf.Triple{{Subject: subject, Predicate: predicate, Object: object}})
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
