package rdf

// Namespace prefixes for the vocabularies the engine manipulates.
const (
	KnoraBasePrefix  = "http://www.knora.org/ontology/knora-base#"
	KnoraAdminPrefix = "http://www.knora.org/ontology/knora-admin#"
	RdfPrefix        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RdfsPrefix       = "http://www.w3.org/2000/01/rdf-schema#"
	XsdPrefix        = "http://www.w3.org/2001/XMLSchema#"
)

// Core RDF/RDFS relations.
const (
	RdfType          = RdfPrefix + "type"
	RdfsSubClassOf   = RdfsPrefix + "subClassOf"
	RdfsSubPropertyOf = RdfsPrefix + "subPropertyOf"
	RdfsLabel        = RdfsPrefix + "label"
)

// XSD datatypes.
const (
	XsdString   = XsdPrefix + "string"
	XsdBoolean  = XsdPrefix + "boolean"
	XsdInteger  = XsdPrefix + "integer"
	XsdDecimal  = XsdPrefix + "decimal"
	XsdDateTime = XsdPrefix + "dateTime"
	XsdAnyURI   = XsdPrefix + "anyURI"
)

// knora-base entity and bookkeeping relations. The valueHas prefix is the
// marker that classifies a subject as value-shaped during assembly.
const (
	Resource            = KnoraBasePrefix + "Resource"
	IsDeleted           = KnoraBasePrefix + "isDeleted"
	DeleteComment       = KnoraBasePrefix + "deleteComment"
	AttachedToUser      = KnoraBasePrefix + "attachedToUser"
	AttachedToProject   = KnoraBasePrefix + "attachedToProject"
	HasPermissions      = KnoraBasePrefix + "hasPermissions"
	CreationDate        = KnoraBasePrefix + "creationDate"
	ValueCreationDate   = KnoraBasePrefix + "valueCreationDate"
	PreviousValue       = KnoraBasePrefix + "previousValue"
	ValueHasPrefix      = KnoraBasePrefix + "valueHas"
	ValueHasString      = KnoraBasePrefix + "valueHasString"
	ValueHasOrder       = KnoraBasePrefix + "valueHasOrder"
	HasValue            = KnoraBasePrefix + "hasValue"
	LinkValue           = KnoraBasePrefix + "LinkValue"
	HasLinkTo           = KnoraBasePrefix + "hasLinkTo"
	ValueHasRefCount    = KnoraBasePrefix + "valueHasRefCount"

	// Standoff ancestry. The start-ancestor relation is never materialized
	// in any store and must always be rewritten to a transitive closure
	// over the start-parent relation.
	StandoffStartParent   = KnoraBasePrefix + "standoffTagHasStartParent"
	StandoffStartAncestor = KnoraBasePrefix + "standoffTagHasStartAncestor"
)

// rdf:object on a LinkValue carries the link target. Reified per the RDF
// reification vocabulary, as the original data model does.
const (
	RdfSubject   = RdfPrefix + "subject"
	RdfPredicate = RdfPrefix + "predicate"
	RdfObject    = RdfPrefix + "object"
)

// knora-admin built-in groups referenced by permission literals.
const (
	UnknownUser   = KnoraAdminPrefix + "UnknownUser"
	KnownUser     = KnoraAdminPrefix + "KnownUser"
	ProjectMember = KnoraAdminPrefix + "ProjectMember"
	Creator       = KnoraAdminPrefix + "Creator"
	ProjectAdmin  = KnoraAdminPrefix + "ProjectAdmin"
	SystemAdmin   = KnoraAdminPrefix + "SystemAdmin"
)

// ExplicitGraphMarker is the canonical graph term a caller uses to restrict
// a statement to explicitly asserted (non-inferred) triples. Dialects
// rewrite or drop it; it never reaches a store verbatim.
const ExplicitGraphMarker = KnoraBasePrefix + "explicitAssertions"
