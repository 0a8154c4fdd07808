// ===== internal/presence/hierarchy.go =====
// Package presence assembles connected-people records into the
// home/room/people hierarchy the menu renders. Ordering is insertion
// ordering throughout. People appear in API arrival order within a
// room, rooms in the order first seen ("no specific room" is a valid
// key like any other), and homes likewise, except that the user's own
// home is always moved to the front.
package presence

import "welcome/internal/api"

// RoomGroup is one room bucket inside a home. Room is nil for people
// whose connection carries no specific room.
type RoomGroup struct {
	Room   *api.Room
	People []*api.ConnectedPerson
}

// HomeGroup is one home and its room buckets in first-seen order
type HomeGroup struct {
	Home  *api.Home
	Rooms []*RoomGroup

	roomIndex map[string]*RoomGroup
}

// room returns the bucket for a room id ("" for no room), creating it in
// arrival position on first use
func (hg *HomeGroup) room(r *api.Room) *RoomGroup {
	key := ""
	if r != nil {
		key = r.ID
	}

	rg, ok := hg.roomIndex[key]
	if !ok {
		rg = &RoomGroup{Room: r}
		hg.roomIndex[key] = rg
		hg.Rooms = append(hg.Rooms, rg)
	}
	return rg
}

// Hierarchy is the ordered Home → Room → people grouping
type Hierarchy struct {
	Homes []*HomeGroup

	homeIndex map[string]*HomeGroup
}

// home returns the group for a home id, creating it at the back on first
// use. Grouping is strictly id-based: a second Home record with the same
// id maps to the group created for the first.
func (h *Hierarchy) home(hm *api.Home) *HomeGroup {
	hg, ok := h.homeIndex[hm.ID]
	if !ok {
		hg = &HomeGroup{Home: hm, roomIndex: make(map[string]*RoomGroup)}
		h.homeIndex[hm.ID] = hg
		h.Homes = append(h.Homes, hg)
	}
	return hg
}

// moveToFront moves the group for a home id ahead of all other homes
func (h *Hierarchy) moveToFront(id string) {
	for i, hg := range h.Homes {
		if hg.Home.ID == id {
			copy(h.Homes[1:i+1], h.Homes[:i])
			h.Homes[0] = hg
			return
		}
	}
}

// PeopleCount returns the number of people across all homes and rooms
func (h *Hierarchy) PeopleCount() int {
	n := 0
	for _, hg := range h.Homes {
		for _, rg := range hg.Rooms {
			n += len(rg.People)
		}
	}
	return n
}

// Build assembles the presence hierarchy:
//
//  1. Connected people with a known home are inserted in arrival order;
//     people without a home are excluded entirely.
//  2. Every home from the homes listing is added (empty) unless already
//     present. A home explicitly marked disconnected is omitted even
//     when step 1 put people in it.
//  3. The current home is ensured present and moved to the front. It is
//     the current connection's home, or else the first of the user's
//     other connections that has one.
func Build(people []*api.ConnectedPerson, homes []*api.Home, current *api.Connection, myConns []*api.Connection) *Hierarchy {
	h := &Hierarchy{homeIndex: make(map[string]*HomeGroup)}

	for _, cp := range people {
		if cp.Home == nil {
			continue
		}
		hg := h.home(cp.Home)
		rg := hg.room(cp.Room)
		rg.People = append(rg.People, cp)
	}

	disconnected := make(map[string]bool)
	for _, hm := range homes {
		if hm.Connected != nil && !*hm.Connected {
			disconnected[hm.ID] = true
			continue
		}
		h.home(hm)
	}
	if len(disconnected) > 0 {
		kept := h.Homes[:0]
		for _, hg := range h.Homes {
			if disconnected[hg.Home.ID] {
				delete(h.homeIndex, hg.Home.ID)
				continue
			}
			kept = append(kept, hg)
		}
		h.Homes = kept
	}

	if currentHome := currentHome(current, myConns); currentHome != nil && !disconnected[currentHome.ID] {
		h.home(currentHome)
		h.moveToFront(currentHome.ID)
	}

	return h
}

// currentHome picks the home to pin first: the current connection's, or
// else the first of the user's other connections that has one
func currentHome(current *api.Connection, myConns []*api.Connection) *api.Home {
	if current != nil && current.Home != nil {
		return current.Home
	}
	for _, conn := range myConns {
		if conn.Home != nil {
			return conn.Home
		}
	}
	return nil
}
