package domain

// Validate checks a structure document for internal consistency. It is
// pure and fails fast: the first violated check aborts the whole
// synchronization before any store access. Checks run in a fixed order:
// field-level constraints, element type presence, natural key
// uniqueness, element type references, parent references, cycles and
// stakeholder key consistency, source/sink node references.
func (cs *CompleteStructure) Validate() error {
	if err := cs.validateFields(); err != nil {
		return err
	}
	if len(cs.ElementTypes) == 0 {
		return validationErrorf(
			"the structure must include at least one element type to be valid")
	}
	if err := cs.validateUniqueKeys(); err != nil {
		return err
	}
	if err := cs.validateElementTypeReferences(); err != nil {
		return err
	}
	if err := cs.validateParentReferences(); err != nil {
		return err
	}
	if err := cs.validateNodeReferences(); err != nil {
		return err
	}
	return nil
}

func (cs *CompleteStructure) validateFields() error {
	check := func(kind string, key NaturalKey, name string) error {
		switch {
		case key.ExternalID == "":
			return validationErrorf("%s %q: the external id cannot be empty", kind, name)
		case key.StakeholderKey == "":
			return validationErrorf("%s %q: the stakeholder key cannot be empty", kind, name)
		case name == "":
			return validationErrorf("%s %s: the name cannot be empty", kind, key)
		}
		return nil
	}
	for _, et := range cs.ElementTypes {
		if err := check("element type", et.Key(), et.Name); err != nil {
			return err
		}
	}
	for _, tn := range cs.ThingNodes {
		if err := check("thing node", tn.Key(), tn.Name); err != nil {
			return err
		}
	}
	for _, src := range cs.Sources {
		if err := check("source", src.Key(), src.Name); err != nil {
			return err
		}
		if err := validateFilters("source", src.Name, src.PassthroughFilters); err != nil {
			return err
		}
	}
	for _, snk := range cs.Sinks {
		if err := check("sink", snk.Key(), snk.Name); err != nil {
			return err
		}
		if err := validateFilters("sink", snk.Name, snk.PassthroughFilters); err != nil {
			return err
		}
	}
	return nil
}

func validateFilters(kind, name string, filters []Filter) error {
	for _, f := range filters {
		if f.Name == "" {
			return validationErrorf("%s %q: the name of the filter must be set", kind, name)
		}
	}
	return nil
}

func (cs *CompleteStructure) validateUniqueKeys() error {
	checkDuplicates := func(kind string, keys []NaturalKey) error {
		seen := make(map[NaturalKey]struct{}, len(keys))
		for _, key := range keys {
			if _, dup := seen[key]; dup {
				return validationErrorf(
					"the stakeholder key and external id pair (%s, %s) occurs more than once among the %ss",
					key.StakeholderKey, key.ExternalID, kind)
			}
			seen[key] = struct{}{}
		}
		return nil
	}

	etKeys := make([]NaturalKey, 0, len(cs.ElementTypes))
	for _, et := range cs.ElementTypes {
		etKeys = append(etKeys, et.Key())
	}
	if err := checkDuplicates("element type", etKeys); err != nil {
		return err
	}

	tnKeys := make([]NaturalKey, 0, len(cs.ThingNodes))
	for _, tn := range cs.ThingNodes {
		tnKeys = append(tnKeys, tn.Key())
	}
	if err := checkDuplicates("thing node", tnKeys); err != nil {
		return err
	}

	srcKeys := make([]NaturalKey, 0, len(cs.Sources))
	for _, src := range cs.Sources {
		srcKeys = append(srcKeys, src.Key())
	}
	if err := checkDuplicates("source", srcKeys); err != nil {
		return err
	}

	snkKeys := make([]NaturalKey, 0, len(cs.Sinks))
	for _, snk := range cs.Sinks {
		snkKeys = append(snkKeys, snk.Key())
	}
	return checkDuplicates("sink", snkKeys)
}

func (cs *CompleteStructure) validateElementTypeReferences() error {
	elementTypes := make(map[NaturalKey]struct{}, len(cs.ElementTypes))
	for _, et := range cs.ElementTypes {
		elementTypes[et.Key()] = struct{}{}
	}
	for _, tn := range cs.ThingNodes {
		key := NaturalKey{StakeholderKey: tn.StakeholderKey, ExternalID: tn.ElementTypeExternalID}
		if _, ok := elementTypes[key]; !ok {
			return validationErrorf(
				"thing node %q references element type %q that is not part of the structure",
				tn.Name, tn.ElementTypeExternalID)
		}
	}
	return nil
}

// validateParentReferences covers three invariants in one pass over the
// parent relation: a non-null parent reference must resolve to a node in
// the document, the stakeholder key must not change along any parent
// chain, and the chain must reach a root without revisiting a node.
func (cs *CompleteStructure) validateParentReferences() error {
	byKey := make(map[NaturalKey]*ThingNode, len(cs.ThingNodes))
	byExternalID := make(map[string][]*ThingNode)
	for _, tn := range cs.ThingNodes {
		byKey[tn.Key()] = tn
		byExternalID[tn.ExternalID] = append(byExternalID[tn.ExternalID], tn)
	}

	for _, tn := range cs.ThingNodes {
		parentKey, hasParent := tn.ParentKey()
		if !hasParent {
			continue
		}
		if _, ok := byKey[parentKey]; ok {
			continue
		}
		// An external id that only exists under another stakeholder key
		// is a consistency violation rather than a dangling reference.
		if len(byExternalID[parentKey.ExternalID]) > 0 {
			return validationErrorf("inconsistent stakeholder_key at node %q", tn.Name)
		}
		return validationErrorf(
			"root node %q has an invalid parent_external_node_id %q that does not reference any existing thing node",
			tn.Name, *tn.ParentExternalNodeID)
	}

	// Walk every ancestor chain; a node revisited before reaching a
	// root means the parent relation contains a cycle.
	for _, tn := range cs.ThingNodes {
		visited := map[NaturalKey]struct{}{tn.Key(): {}}
		current := tn
		for {
			parentKey, hasParent := current.ParentKey()
			if !hasParent {
				break
			}
			if _, seen := visited[parentKey]; seen {
				return validationErrorf("circular reference detected in node %q", tn.ExternalID)
			}
			parent := byKey[parentKey]
			if parent == nil {
				break
			}
			if parent.StakeholderKey != tn.StakeholderKey {
				return validationErrorf("inconsistent stakeholder_key at node %q", parent.Name)
			}
			visited[parentKey] = struct{}{}
			current = parent
		}
	}
	return nil
}

func (cs *CompleteStructure) validateNodeReferences() error {
	nodes := make(map[NaturalKey]struct{}, len(cs.ThingNodes))
	for _, tn := range cs.ThingNodes {
		nodes[tn.Key()] = struct{}{}
	}
	for _, src := range cs.Sources {
		for _, externalID := range src.ThingNodeExternalID {
			key := NaturalKey{StakeholderKey: src.StakeholderKey, ExternalID: externalID}
			if _, ok := nodes[key]; !ok {
				return validationErrorf(
					"the thing_node_external_ids attribute of source %q references %q which is not part of the structure",
					src.Name, externalID)
			}
		}
	}
	for _, snk := range cs.Sinks {
		for _, externalID := range snk.ThingNodeExternalID {
			key := NaturalKey{StakeholderKey: snk.StakeholderKey, ExternalID: externalID}
			if _, ok := nodes[key]; !ok {
				return validationErrorf(
					"the thing_node_external_ids attribute of sink %q references %q which is not part of the structure",
					snk.Name, externalID)
			}
		}
	}
	return nil
}
