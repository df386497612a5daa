package algo

import "github.com/elektrokombinacija/drone-route-planner/internal/core"

// initialPopulation builds individuals by walking the drones and, with
// probability InitialAssignProb, drawing parcels that fit from the unused pool.
func (o *RouteOptimizer) initialPopulation(inst *core.Instance) []core.Individual {
	pop := make([]core.Individual, o.cfg.PopulationSize)
	for p := range pop {
		ind := core.NewIndividual(len(inst.Drones))
		used := make(map[core.DeliveryID]bool)

		for i, d := range inst.Drones {
			if o.rng.Float64() >= o.cfg.InitialAssignProb {
				continue
			}
			var avail []*core.DeliveryPoint
			for _, dp := range inst.Deliveries {
				if !used[dp.ID] && d.CanCarry(dp.Weight) {
					avail = append(avail, dp)
				}
			}
			if len(avail) == 0 {
				continue
			}
			o.rng.Shuffle(len(avail), func(a, b int) { avail[a], avail[b] = avail[b], avail[a] })

			want := 1
			if o.cfg.Mode == MultiParcel {
				want = 1 + o.rng.Intn(len(avail))
			}
			load := 0.0
			for _, dp := range avail {
				if len(ind[i]) == want {
					break
				}
				if !d.CanCarry(load + dp.Weight) {
					continue
				}
				load += dp.Weight
				ind[i] = append(ind[i], dp.ID)
				used[dp.ID] = true
			}
		}
		pop[p] = o.Repair(inst, ind)
	}
	return pop
}

// tournament samples TournamentSize individuals uniformly and returns the fittest.
func (o *RouteOptimizer) tournament(pop []scored) core.Individual {
	best := pop[o.rng.Intn(len(pop))]
	for i := 1; i < o.cfg.TournamentSize; i++ {
		c := pop[o.rng.Intn(len(pop))]
		if c.eval.Fitness > best.eval.Fitness {
			best = c
		}
	}
	return best.ind
}

// crossover breeds two children route by route.
func (o *RouteOptimizer) crossover(p1, p2 core.Individual) (core.Individual, core.Individual) {
	c1 := make(core.Individual, len(p1))
	c2 := make(core.Individual, len(p2))
	for i := range p1 {
		a, b := p1[i], p2[i]
		if o.cfg.Mode == SingleParcel {
			// Single-element routes: exchange genes between the children.
			if o.rng.Float64() < 0.5 {
				a, b = b, a
			}
			c1[i] = append([]core.DeliveryID{}, a...)
			c2[i] = append([]core.DeliveryID{}, b...)
			continue
		}
		c1[i] = o.orderedCrossover(a, b)
		c2[i] = o.orderedCrossover(b, a)
	}
	return c1, c2
}

// orderedCrossover copies a slice of a between two cut points, then appends
// b's remaining ids in order, skipping duplicates.
func (o *RouteOptimizer) orderedCrossover(a, b []core.DeliveryID) []core.DeliveryID {
	if len(a) < 2 {
		return append([]core.DeliveryID{}, a...)
	}
	i, j := o.rng.Intn(len(a)), o.rng.Intn(len(a))
	if i > j {
		i, j = j, i
	}
	child := append([]core.DeliveryID{}, a[i:j+1]...)
	in := make(map[core.DeliveryID]bool, len(a)+len(b))
	for _, id := range child {
		in[id] = true
	}
	for _, id := range b {
		if !in[id] {
			child = append(child, id)
			in[id] = true
		}
	}
	return child
}

// mutate changes each route with probability MutationRate.
func (o *RouteOptimizer) mutate(inst *core.Instance, ind core.Individual) {
	for i := range ind {
		if o.rng.Float64() >= o.cfg.MutationRate {
			continue
		}
		if o.cfg.Mode == MultiParcel {
			route := ind[i]
			if len(route) < 2 {
				continue
			}
			a, b := o.rng.Intn(len(route)), o.rng.Intn(len(route)-1)
			if b >= a {
				b++
			}
			route[a], route[b] = route[b], route[a]
			continue
		}
		o.mutateSingle(inst, ind, i)
	}
}

// mutateSingle draws a random delivery for route i. If another route holds
// it the two genes are exchanged, otherwise it replaces route i's gene.
func (o *RouteOptimizer) mutateSingle(inst *core.Instance, ind core.Individual, i int) {
	if len(inst.Deliveries) == 0 {
		return
	}
	id := inst.Deliveries[o.rng.Intn(len(inst.Deliveries))].ID
	for j, route := range ind {
		if j != i && len(route) == 1 && route[0] == id {
			ind[i], ind[j] = ind[j], ind[i]
			return
		}
	}
	ind[i] = []core.DeliveryID{id}
}

// Repair restores structural validity. Routes are truncated at the first
// unknown, duplicate or excess id; the cut ids that are not kept elsewhere
// go to drones with spare capacity and free slots, or are dropped.
// A valid individual is returned as an unchanged copy.
func (o *RouteOptimizer) Repair(inst *core.Instance, ind core.Individual) core.Individual {
	if o.ValidateStructure(inst, ind) == nil {
		return ind.Clone()
	}

	out := core.NewIndividual(len(inst.Drones))
	used := make(map[core.DeliveryID]bool)
	var cut []core.DeliveryID
	for i := range out {
		if i >= len(ind) {
			continue
		}
		route := ind[i]
		keep := len(route)
		for k, id := range route {
			if !inst.HasDelivery(id) || used[id] || (o.cfg.Mode == SingleParcel && k >= 1) {
				keep = k
				break
			}
			used[id] = true
		}
		out[i] = append(out[i], route[:keep]...)
		cut = append(cut, route[keep:]...)
	}
	// Routes beyond the fleet size are cut entirely.
	for i := len(out); i < len(ind); i++ {
		cut = append(cut, ind[i]...)
	}

	loads := make([]float64, len(out))
	for i, route := range out {
		for _, id := range route {
			dp, _ := inst.DeliveryByID(id)
			loads[i] += dp.Weight
		}
	}

	for _, id := range cut {
		if used[id] || !inst.HasDelivery(id) {
			continue
		}
		dp, _ := inst.DeliveryByID(id)
		for i, d := range inst.Drones {
			if o.cfg.Mode == SingleParcel && len(out[i]) > 0 {
				continue
			}
			if !d.CanCarry(loads[i] + dp.Weight) {
				continue
			}
			out[i] = append(out[i], id)
			loads[i] += dp.Weight
			used[id] = true
			break
		}
	}
	return out
}
