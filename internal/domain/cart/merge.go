package cart

// Merge combines a guest cart into a user cart after login. The result starts
// from the user cart's items; guest quantities are added onto matching
// (product, size) keys and unmatched guest items are appended. Totals are
// recomputed from the merged set, never copied from either source.
func Merge(user, guest Cart) Cart {
	merged := cloneItems(user)

	index := make(map[string]int, len(merged.Items))
	for i, item := range merged.Items {
		index[item.Key()] = i
	}

	for _, g := range guest.Items {
		if i, ok := index[g.Key()]; ok {
			merged.Items[i].Quantity = clampQuantity(merged.Items[i].Quantity + g.Quantity)
			continue
		}
		index[g.Key()] = len(merged.Items)
		merged.Items = append(merged.Items, g)
	}

	return Recompute(merged)
}

// MergePending folds the pending-items list (captured while the user was
// unauthenticated) into an already-merged cart. The guest-cart merge runs
// first and wins: a pending item whose (product, size) key is already present
// is assumed to be the same add the guest cart recorded, and is skipped to
// avoid double counting. Only keys the cart has never seen are appended.
func MergePending(c Cart, pending []CartItem) Cart {
	if len(pending) == 0 {
		return c
	}

	next := cloneItems(c)
	seen := make(map[string]bool, len(next.Items))
	for _, item := range next.Items {
		seen[item.Key()] = true
	}

	for _, p := range pending {
		if p.Product.ID == "" || p.Quantity <= 0 {
			continue
		}
		if seen[p.Key()] {
			continue
		}
		if p.ID == "" {
			p.ID = p.Key()
		}
		p.Quantity = clampQuantity(p.Quantity)
		seen[p.Key()] = true
		next.Items = append(next.Items, p)
	}

	return Recompute(next)
}
