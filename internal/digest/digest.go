// SPDX-License-Identifier: AGPL-3.0-or-later
// zenoh-router - declaration-propagation and replica-digest routing core
// Copyright (C) 2026 the zenoh-router authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/jito-labs/zenoh-router>

// Package digest implements the hierarchical, time-bucketed replica log
// summary described in spec.md §4.3, grounded on
// original_source/plugins/zenoh-plugin-storage-manager/src/replica/digest.rs.
// A Digest is a value: CreateDigest and UpdateDigest consume their input
// and return the result: per spec.md §5 "the digest is a value type
// passed by copy/move to its owner; it is not concurrently mutated",
// callers must not use a Digest passed into UpdateDigest afterward.
package digest

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Digest is the full local summary: every era, interval and subinterval
// bucket it currently holds (spec.md §4.3 "Structure").
type Digest struct {
	Timestamp    Timestamp
	Config       Config
	Checksum     uint64
	Eras         map[Era]Bucket
	Intervals    map[uint64]Bucket
	Subintervals map[uint64]SubBucket
}

func newDigest(ts Timestamp, cfg Config) Digest {
	return Digest{
		Timestamp:    ts,
		Config:       cfg,
		Eras:         map[Era]Bucket{},
		Intervals:    map[uint64]Bucket{},
		Subintervals: map[uint64]SubBucket{},
	}
}

// CreateDigest builds a digest from scratch over a raw log (spec.md §4.3
// "create_digest"). The result does not depend on rawLog's order (P1).
func CreateDigest(ts Timestamp, cfg Config, rawLog []LogEntry, latestInterval uint64) Digest {
	d := newDigest(ts, cfg)

	subsByInterval := map[uint64][]uint64{}
	intervalsByEra := map[Era][]uint64{}
	intervalEra := map[uint64]Era{}
	subInterval := map[uint64]uint64{}

	entriesBySub := map[uint64][]LogEntry{}
	for _, e := range rawLog {
		sub, interval, era, ok := cfg.bucketOf(e.Timestamp.Millis, latestInterval)
		if !ok {
			slog.Warn("digest: dropping log entry outside bucketable range", "key", e.Key)
			continue
		}
		entriesBySub[sub] = append(entriesBySub[sub], e)
		if _, seen := subInterval[sub]; !seen {
			subInterval[sub] = interval
			subsByInterval[interval] = insertUint64(subsByInterval[interval], sub)
		}
		if _, seen := intervalEra[interval]; !seen {
			intervalEra[interval] = era
			intervalsByEra[era] = insertUint64(intervalsByEra[era], interval)
		}
	}

	for sub, entries := range entriesBySub {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Compare(entries[j]) < 0 })
		d.Subintervals[sub] = SubBucket{Checksum: hashLogEntries(entries), Content: entries}
	}
	for interval, subs := range subsByInterval {
		d.Intervals[interval] = Bucket{Checksum: hashUint64s(subChecksums(d, subs)), Content: subs}
	}
	for era, intervals := range intervalsByEra {
		d.Eras[era] = Bucket{Checksum: hashUint64s(intervalChecksums(d, intervals)), Content: intervals}
	}
	d.Checksum = digestChecksum(d.Eras)
	return d
}

func subChecksums(d Digest, subs []uint64) []uint64 {
	out := make([]uint64, len(subs))
	for i, s := range subs {
		out[i] = d.Subintervals[s].Checksum
	}
	return out
}

func intervalChecksums(d Digest, intervals []uint64) []uint64 {
	out := make([]uint64, len(intervals))
	for i, iv := range intervals {
		out[i] = d.Intervals[iv].Checksum
	}
	return out
}

func digestChecksum(eras map[Era]Bucket) uint64 {
	var ordered []uint64
	for _, era := range eraOrder {
		if b, ok := eras[era]; ok {
			ordered = append(ordered, b.Checksum)
		}
	}
	return hashUint64s(ordered)
}

// touched accumulates the bucket ids whose checksums need recomputing.
type touched struct {
	subs      map[uint64]struct{}
	intervals map[uint64]struct{}
	eras      map[Era]struct{}
}

func newTouched() touched {
	return touched{subs: map[uint64]struct{}{}, intervals: map[uint64]struct{}{}, eras: map[Era]struct{}{}}
}

// UpdateDigest applies additions and removals and returns the refreshed
// digest (spec.md §4.3 "update_digest"): removal pass, addition pass,
// era re-alignment, then a bottom-up checksum recompute over everything
// touched.
func UpdateDigest(current Digest, latestInterval uint64, snapshotTS Timestamp, added, removed []LogEntry) Digest {
	t := newTouched()

	removeContent(&current, removed, latestInterval, t)
	addContent(&current, added, latestInterval, t)
	realignEras(&current, latestInterval, t)
	recomputeTouched(&current, t)

	current.Timestamp = snapshotTS
	current.Checksum = digestChecksum(current.Eras)
	return current
}

// removeContent is the removal pass: for each removed entry, drop it
// from its subinterval, cascading the removal up to the interval and
// era buckets if they become empty (spec.md §4.3 step 1).
func removeContent(d *Digest, removed []LogEntry, latestInterval uint64, t touched) {
	for _, e := range removed {
		sub, interval, era, ok := d.Config.bucketOf(e.Timestamp.Millis, latestInterval)
		if !ok {
			continue
		}
		t.subs[sub] = struct{}{}
		t.intervals[interval] = struct{}{}
		t.eras[era] = struct{}{}

		subBucket, ok := d.Subintervals[sub]
		if !ok {
			slog.Warn("digest: removal referenced missing subinterval", "sub", sub)
			continue
		}
		subBucket.Content = removeLogEntry(subBucket.Content, e)
		d.Subintervals[sub] = subBucket
		if len(subBucket.Content) != 0 {
			continue
		}

		intervalBucket, ok := d.Intervals[interval]
		if !ok {
			continue
		}
		intervalBucket.Content = removeUint64(intervalBucket.Content, sub)
		d.Intervals[interval] = intervalBucket
		if len(intervalBucket.Content) != 0 {
			continue
		}

		if eraBucket, ok := d.Eras[era]; ok {
			eraBucket.Content = removeUint64(eraBucket.Content, interval)
			d.Eras[era] = eraBucket
		}
	}
}

// addContent is the addition pass: insert each added entry into its
// (subinterval, interval, era), creating buckets as needed (spec.md
// §4.3 step 2).
func addContent(d *Digest, added []LogEntry, latestInterval uint64, t touched) {
	for _, e := range added {
		sub, interval, era, ok := d.Config.bucketOf(e.Timestamp.Millis, latestInterval)
		if !ok {
			slog.Warn("digest: dropping added entry outside bucketable range", "key", e.Key)
			continue
		}
		t.subs[sub] = struct{}{}
		t.intervals[interval] = struct{}{}
		t.eras[era] = struct{}{}

		subBucket := d.Subintervals[sub]
		subBucket.Content = insertLogEntry(subBucket.Content, e)
		d.Subintervals[sub] = subBucket

		intervalBucket := d.Intervals[interval]
		intervalBucket.Content = insertUint64(intervalBucket.Content, sub)
		d.Intervals[interval] = intervalBucket

		eraBucket := d.Eras[era]
		eraBucket.Content = insertUint64(eraBucket.Content, interval)
		d.Eras[era] = eraBucket
	}
}

// realignEras is the era re-alignment pass: every interval currently
// filed under Hot or Warm is re-classified against the new
// latestInterval, physically migrating it if it has moved (spec.md
// §4.3 step 3).
func realignEras(d *Digest, latestInterval uint64, t touched) {
	type move struct {
		interval uint64
		from, to Era
	}
	var moves []move
	for _, era := range [...]Era{HotEra, WarmEra} {
		bucket, ok := d.Eras[era]
		if !ok {
			continue
		}
		for _, interval := range bucket.Content {
			newEra := d.Config.eraFor(latestInterval, interval)
			if newEra != era {
				moves = append(moves, move{interval, era, newEra})
			}
		}
	}
	for _, m := range moves {
		if bucket, ok := d.Eras[m.from]; ok {
			bucket.Content = removeUint64(bucket.Content, m.interval)
			d.Eras[m.from] = bucket
		}
		bucket := d.Eras[m.to]
		bucket.Content = insertUint64(bucket.Content, m.interval)
		d.Eras[m.to] = bucket
		t.eras[m.from] = struct{}{}
		t.eras[m.to] = struct{}{}
	}
}

// recomputeTouched recomputes checksums bottom-up for every touched
// bucket, dropping any that end up empty (spec.md §4.3 step 4). The
// subinterval pass hashes each touched bucket's content independently,
// so it fans out across an errgroup (spec.md §9 allows an update to
// recompute touched checksums "in whatever order or parallelism the
// implementation chooses" so long as the result matches the
// sequential one) before the results are written back to the map.
func recomputeTouched(d *Digest, t touched) {
	recomputeSubsParallel(d, t.subs)

	for interval := range t.intervals {
		bucket, ok := d.Intervals[interval]
		if !ok {
			continue
		}
		bucket.Content = retainExisting(bucket.Content, d.Subintervals)
		if len(bucket.Content) == 0 {
			delete(d.Intervals, interval)
			continue
		}
		bucket.Checksum = hashUint64s(subChecksums(*d, bucket.Content))
		d.Intervals[interval] = bucket
	}

	for era := range t.eras {
		bucket, ok := d.Eras[era]
		if !ok {
			continue
		}
		bucket.Content = retainExisting(bucket.Content, d.Intervals)
		if len(bucket.Content) == 0 {
			delete(d.Eras, era)
			continue
		}
		bucket.Checksum = hashUint64s(intervalChecksums(*d, bucket.Content))
		d.Eras[era] = bucket
	}
}

// recomputeSubsParallel hashes every touched subinterval's content
// concurrently and writes the results back sequentially, since
// concurrent writes to d.Subintervals would race. Drops any bucket
// that has gone empty.
func recomputeSubsParallel(d *Digest, subs map[uint64]struct{}) {
	type result struct {
		sub     uint64
		bucket  SubBucket
		present bool
	}
	results := make([]result, 0, len(subs))
	for sub := range subs {
		bucket, ok := d.Subintervals[sub]
		results = append(results, result{sub: sub, bucket: bucket, present: ok && len(bucket.Content) != 0})
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := range results {
		if !results[i].present {
			continue
		}
		i := i
		g.Go(func() error {
			results[i].bucket.Checksum = hashLogEntries(results[i].bucket.Content)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if !r.present {
			delete(d.Subintervals, r.sub)
			continue
		}
		d.Subintervals[r.sub] = r.bucket
	}
}

// retainExisting filters ids down to those still present as keys in m,
// matching original_source's `content.retain(|x| subintervals.contains_key(x))`
// dangling-reference cleanup (spec.md §7).
func retainExisting[V any](ids []uint64, m map[uint64]V) []uint64 {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := m[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
