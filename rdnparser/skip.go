package rdnparser

// Skip advances past the subtree rooted at the current token: from a
// property name it moves onto (and past) the value, from a Start token it
// reads until the matching End token. Only valid on a final-block reader;
// partial-data callers use TrySkip.
func (r *Reader) Skip() error {
	if !r.isFinalBlock {
		panic("Skip requires isFinalBlock; use TrySkip with partial data")
	}
	_, err := r.skipSubtree()
	return err
}

// TrySkip is Skip with rollback: when the buffer ends mid-subtree it
// restores the reader to its pre-call state and returns false.
func (r *Reader) TrySkip() (bool, error) {
	saved := r.clone()
	ok, err := r.skipSubtree()
	if err != nil {
		return false, err
	}
	if !ok {
		*r = saved
		return false, nil
	}
	return true, nil
}

func (r *Reader) skipSubtree() (bool, error) {
	if r.kind == KindPropertyName {
		ok, err := r.Read()
		if !ok || err != nil {
			return ok, err
		}
	}
	if r.kind.IsStartContainer() {
		target := r.CurrentDepth()
		for {
			ok, err := r.Read()
			if !ok || err != nil {
				return ok, err
			}
			if r.CurrentDepth() <= target {
				break
			}
		}
	}
	return true, nil
}
